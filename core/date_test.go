package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		name string
		date string
		n    int
		want string
	}{
		{name: "same day", date: "2024-01-15", n: 1, want: "2024-02-15"},
		{name: "clamp leap year", date: "2024-01-31", n: 1, want: "2024-02-29"},
		{name: "clamp non leap year", date: "2023-01-31", n: 1, want: "2023-02-28"},
		{name: "clamp 30 days", date: "2024-03-31", n: 1, want: "2024-04-30"},
		{name: "cross year", date: "2024-11-30", n: 3, want: "2025-02-28"},
		{name: "no drift", date: "2024-01-31", n: 2, want: "2024-03-31"},
		{name: "zero", date: "2024-05-05", n: 0, want: "2024-05-05"},
		{name: "backwards", date: "2024-03-31", n: -1, want: "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustParseDate(tt.date).AddMonths(tt.n)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDisplayConversion(t *testing.T) {
	assert.Equal(t, "03/06/2024", ToDisplay("2024-06-03"))
	assert.Equal(t, "", ToDisplay(""))
	assert.Equal(t, "", ToDisplay("03/06/2024"))

	iso, err := FromDisplay("03/06/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", iso)

	_, err = FromDisplay("2024-06-03")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Due Date `json:"dueDate"`
	}

	data, err := json.Marshal(payload{Due: NewDate(2024, time.June, 3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dueDate": "2024-06-03"}`, string(data))

	data, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dueDate": null}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": "2024-02-29"}`), &p))
	assert.Equal(t, "2024-02-29", p.Due.String())
	assert.Equal(t, time.Thursday, p.Due.Weekday())

	assert.Error(t, json.Unmarshal([]byte(`{"dueDate": "29/02/2024"}`), &p))

	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": ""}`), &p))
	assert.True(t, p.Due.IsZero())
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-03", d.String())

	require.NoError(t, d.Scan("2024-06-04T00:00:00Z"))
	assert.Equal(t, "2024-06-04", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
