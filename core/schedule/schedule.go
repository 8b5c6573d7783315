package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// Slot is the time range of a class on a given day ("HH:MM").
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// minutes returns the minutes since midnight of a "HH:MM" time.
func minutes(hhmm string) (int, bool) {
	if !core.IsTimeOfDay(hhmm) {
		return 0, false
	}
	parts := strings.SplitN(hhmm, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, true
}

// WeeklySchedule maps weekdays to class slots.
// Keys that do not name a weekday are kept aside so that a malformed schedule
// can be told apart from an empty one.
type WeeklySchedule struct {
	days       map[time.Weekday]Slot
	unmatched  map[string]Slot
	duplicates []string
}

// NewWeeklySchedule builds a schedule from canonical weekdays.
func NewWeeklySchedule(days map[time.Weekday]Slot) WeeklySchedule {
	s := WeeklySchedule{days: make(map[time.Weekday]Slot, len(days))}
	for wd, slot := range days {
		s.days[wd] = slot
	}
	return s
}

// ParseWeeklySchedule normalizes raw day keys (any variant accepted by ParseWeekday).
func ParseWeeklySchedule(raw map[string]Slot) WeeklySchedule {
	s := WeeklySchedule{days: make(map[time.Weekday]Slot, len(raw))}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		wd, ok := ParseWeekday(key)
		if !ok {
			if s.unmatched == nil {
				s.unmatched = make(map[string]Slot)
			}
			s.unmatched[key] = raw[key]
			continue
		}
		if _, exists := s.days[wd]; exists {
			s.duplicates = append(s.duplicates, key)
			continue
		}
		s.days[wd] = raw[key]
	}
	return s
}

// IsEmpty reports whether the schedule holds no entry at all, valid or not.
func (s WeeklySchedule) IsEmpty() bool {
	return len(s.days) == 0 && len(s.unmatched) == 0
}

// Matches reports whether classes are held on wd.
func (s WeeklySchedule) Matches(wd time.Weekday) bool {
	_, ok := s.days[wd]
	return ok
}

func (s WeeklySchedule) Slot(wd time.Weekday) (Slot, bool) {
	slot, ok := s.days[wd]
	return slot, ok
}

// Days returns the scheduled weekdays, Monday first.
func (s WeeklySchedule) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(s.days))
	for wd := range s.days {
		days = append(days, wd)
	}
	sort.Slice(days, func(i, j int) bool { return ISOWeekday(days[i]) < ISOWeekday(days[j]) })
	return days
}

// Validate reports unknown or repeated day keys and invalid time ranges.
func (s WeeklySchedule) Validate() []core.FieldError {
	var errs []core.FieldError
	add := func(key, msg string) {
		errs = append(errs, core.FieldError{Field: "schedule." + key, Error: msg})
	}

	unknown := make([]string, 0, len(s.unmatched))
	for key := range s.unmatched {
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		add(key, fmt.Sprintf("%q is not a day of the week", key))
	}
	for _, key := range s.duplicates {
		add(key, "day is listed more than once")
	}
	for _, wd := range s.Days() {
		slot := s.days[wd]
		start, okStart := minutes(slot.StartTime)
		end, okEnd := minutes(slot.EndTime)
		switch {
		case !okStart:
			add(wd.String(), "startTime must be formatted as HH:MM")
		case !okEnd:
			add(wd.String(), "endTime must be formatted as HH:MM")
		case end <= start:
			add(wd.String(), "endTime must be after startTime")
		}
	}
	return errs
}

func (s WeeklySchedule) raw() map[string]Slot {
	raw := make(map[string]Slot, len(s.days)+len(s.unmatched))
	for key, slot := range s.unmatched {
		raw[key] = slot
	}
	for wd, slot := range s.days {
		raw[wd.String()] = slot
	}
	return raw
}

func (s WeeklySchedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.raw())
}

func (s *WeeklySchedule) UnmarshalJSON(b []byte) error {
	var raw map[string]Slot
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "schedule must map days to {startTime, endTime}")
	}
	*s = ParseWeeklySchedule(raw)
	return nil
}

func (s WeeklySchedule) Value() (driver.Value, error) {
	b, err := json.Marshal(s.raw())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *WeeklySchedule) Scan(v interface{}) error {
	switch x := v.(type) {
	case nil:
		*s = WeeklySchedule{}
		return nil
	case []byte:
		return s.UnmarshalJSON(x)
	case string:
		return s.UnmarshalJSON([]byte(x))
	default:
		return fmt.Errorf("schedule: unsupported Scan type %T", v)
	}
}
