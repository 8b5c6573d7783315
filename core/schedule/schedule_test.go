package schedule

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		key    string
		want   time.Weekday
		wantOk bool
	}{
		{key: "Monday", want: time.Monday, wantOk: true},
		{key: "Mon", want: time.Monday, wantOk: true},
		{key: "monday", want: time.Monday, wantOk: true},
		{key: "mon", want: time.Monday, wantOk: true},
		{key: "SUNDAY", want: time.Sunday, wantOk: true},
		{key: " thu ", want: time.Thursday, wantOk: true},
		{key: "0", want: time.Sunday, wantOk: true},
		{key: "1", want: time.Monday, wantOk: true},
		{key: "6", want: time.Saturday, wantOk: true},
		{key: "7", want: time.Sunday, wantOk: true},
		{key: "8"},
		{key: "-1"},
		{key: "+1"},
		{key: "01"},
		{key: "1.0"},
		{key: "foo"},
		{key: "mo"},
		{key: ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseWeekday(tt.key)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWeeklySchedule_JSON(t *testing.T) {
	var sched WeeklySchedule
	err := json.Unmarshal([]byte(`{
		"mon": {"startTime": "10:00", "endTime": "12:00"},
		"3": {"startTime": "14:00", "endTime": "16:00"},
		"7": {"startTime": "09:00", "endTime": "11:00"}
	}`), &sched)
	require.NoError(t, err)

	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Sunday}, sched.Days())
	assert.True(t, sched.Matches(time.Wednesday))
	assert.False(t, sched.Matches(time.Tuesday))
	assert.Empty(t, sched.Validate())

	data, err := json.Marshal(sched)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Monday": {"startTime": "10:00", "endTime": "12:00"},
		"Wednesday": {"startTime": "14:00", "endTime": "16:00"},
		"Sunday": {"startTime": "09:00", "endTime": "11:00"}
	}`, string(data))
}

func TestWeeklySchedule_Validate(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]Slot
		wantFields []string
	}{
		{name: "empty"},
		{name: "valid", raw: map[string]Slot{"Tuesday": {StartTime: "9:00", EndTime: "10:30"}}},
		{
			name:       "unknown day",
			raw:        map[string]Slot{"foo": {StartTime: "9:00", EndTime: "10:00"}},
			wantFields: []string{"schedule.foo"},
		},
		{
			name: "duplicate day",
			raw: map[string]Slot{
				"Monday": {StartTime: "9:00", EndTime: "10:00"},
				"mon":    {StartTime: "9:00", EndTime: "10:00"},
			},
			wantFields: []string{"schedule.mon"},
		},
		{
			name:       "bad time",
			raw:        map[string]Slot{"Friday": {StartTime: "9h", EndTime: "10:00"}},
			wantFields: []string{"schedule.Friday"},
		},
		{
			name:       "end before start",
			raw:        map[string]Slot{"Friday": {StartTime: "11:00", EndTime: "10:00"}},
			wantFields: []string{"schedule.Friday"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ParseWeeklySchedule(tt.raw).Validate()
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestCatalog_TotalLectures(t *testing.T) {
	cat := DefaultCatalog()

	tests := []struct {
		software string
		want     int
	}{
		{software: "Photoshop, Maya", want: 115},
		{software: "Photoshop", want: 23},
		{software: "photoshop", want: 23},
		{software: "Adobe Photoshop CC", want: 23},
		{software: " Maya ,, ", want: 92},
		{software: "Maya, Unknown", want: 92},
		{software: "Unknown", want: 0},
		{software: "", want: 0},
		{software: " , ,", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.software, func(t *testing.T) {
			assert.Equal(t, tt.want, cat.TotalLectures(tt.software))
		})
	}
}

func TestCatalog_Lookup_DeclarationOrder(t *testing.T) {
	cat, err := NewCatalog([]Entry{
		{Name: "Premiere Pro", Lectures: 20},
		{Name: "Final Cut Pro", Lectures: 15},
		{Name: "pro", Lectures: 1},
	})
	require.NoError(t, err)

	// exact match beats an earlier fuzzy one
	e, ok := cat.Lookup("pro")
	require.True(t, ok)
	assert.Equal(t, 1, e.Lectures)

	// first fuzzy match in declaration order
	e, ok = cat.Lookup("PRO")
	require.True(t, ok)
	assert.Equal(t, "Premiere Pro", e.Name)
}

func TestCatalog_Unrecognized(t *testing.T) {
	got := DefaultCatalog().Unrecognized("Photshop, Maya, Qwertyuiop")
	assert.Equal(t, []Suggestion{
		{Name: "Photshop", Suggestion: "Photoshop"},
		{Name: "Qwertyuiop"},
	}, got)
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(strings.NewReader("name,lectures\nPhotoshop,30\nKrita,12\n"))
	require.NoError(t, err)
	assert.Equal(t, 42, cat.TotalLectures("photoshop, krita"))
	assert.Len(t, cat.Entries(), 2)

	_, err = LoadCatalog(strings.NewReader("name,lectures\nPhotoshop,30\nPhotoshop,12\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader("name,lectures\nPhotoshop,-3\n"))
	assert.Error(t, err)
}

func TestExpectedEndDate(t *testing.T) {
	mondays := ParseWeeklySchedule(map[string]Slot{"Monday": {StartTime: "10:00", EndTime: "12:00"}})
	monWedFri := NewWeeklySchedule(map[time.Weekday]Slot{
		time.Monday:    {StartTime: "10:00", EndTime: "12:00"},
		time.Wednesday: {StartTime: "10:00", EndTime: "12:00"},
		time.Friday:    {StartTime: "10:00", EndTime: "12:00"},
	})
	isoSunday := ParseWeeklySchedule(map[string]Slot{"7": {StartTime: "10:00", EndTime: "12:00"}})

	tests := []struct {
		name     string
		start    string
		software string
		sched    WeeklySchedule
		want     string
		wantErr  error
	}{
		{name: "23 mondays", start: "2024-01-01", software: "Photoshop", sched: mondays, want: "2024-06-03"},
		{name: "start not scheduled", start: "2024-01-02", software: "Photoshop", sched: mondays, want: "2024-06-10"},
		{name: "3 days a week", start: "2024-01-01", software: "Lightroom", sched: monWedFri, want: "2024-01-17"},
		{name: "iso sunday", start: "2024-01-01", software: "Lightroom", sched: isoSunday, want: "2024-02-25"},
		{name: "no schedule", start: "2024-01-01", software: "Photoshop", want: "2024-01-24"},
		{name: "unknown software", start: "2024-01-01", software: "Qwerty", sched: mondays, want: "2024-01-01"},
		{name: "no start date", software: "Photoshop", sched: mondays},
		{name: "no software", start: "2024-01-01", software: "  ", sched: mondays},
		{
			name: "malformed schedule", start: "2024-01-01", software: "Photoshop",
			sched:   ParseWeeklySchedule(map[string]Slot{"foo": {StartTime: "9:00", EndTime: "10:00"}}),
			wantErr: ErrInvalidSchedule,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpectedEndDate(core.MustParseDate(tt.start), tt.software, tt.sched, nil)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
