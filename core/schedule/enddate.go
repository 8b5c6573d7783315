package schedule

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// scanWeeksPerLecture bounds the day scan: a valid schedule needs at most 7 days per lecture,
// so 10 times that can only be reached by a schedule without any real weekday.
const scanWeeksPerLecture = 10

var ErrInvalidSchedule = errors.New("schedule does not contain any valid day of the week")

// ExpectedEndDate returns the date of the last lecture of a batch.
//   - no start date or no software: zero Date (N/A)
//   - no recognized software (0 lectures): the start date
//   - empty schedule: one lecture per calendar day, i.e. start + lectures days
//   - otherwise the date on which the scheduled sessions, counted from start inclusive,
//     reach the lecture count.
//
// A schedule whose keys match no weekday yields ErrInvalidSchedule.
func ExpectedEndDate(start core.Date, software string, sched WeeklySchedule, catalog *Catalog) (core.Date, error) {
	if start.IsZero() || strings.TrimSpace(software) == "" {
		return core.Date{}, nil
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return EndDateForLectures(start, catalog.TotalLectures(software), sched)
}

// EndDateForLectures is ExpectedEndDate once the lecture count is known.
func EndDateForLectures(start core.Date, lectures int, sched WeeklySchedule) (core.Date, error) {
	if start.IsZero() {
		return core.Date{}, nil
	}
	if lectures <= 0 {
		return start, nil
	}
	if sched.IsEmpty() {
		return start.AddDays(lectures), nil
	}

	limit := scanWeeksPerLecture * lectures * 7
	cursor := start
	var sessions int
	for day := 0; day < limit; day++ {
		if sched.Matches(cursor.Weekday()) {
			sessions++
			if sessions == lectures {
				return cursor, nil
			}
		}
		cursor = cursor.AddDays(1)
	}
	return core.Date{}, ErrInvalidSchedule
}
