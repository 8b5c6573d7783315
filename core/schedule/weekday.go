package schedule

import (
	"strconv"
	"strings"
	"time"
)

var weekdaysByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 14)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		m[name] = wd
		m[name[:3]] = wd
	}
	return m
}()

// ParseWeekday normalizes a schedule day key into a time.Weekday.
// Accepted forms: full English name or 3-letter abbreviation in any case ("Monday", "mon"),
// 0-6 with Sunday=0, and ISO 1-7 with Monday=1 & Sunday=7.
// Both numberings agree on 1-6; 0 and 7 both mean Sunday.
func ParseWeekday(key string) (time.Weekday, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return 0, false
	}
	if wd, ok := weekdaysByName[key]; ok {
		return wd, true
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || n > 7 || strconv.Itoa(n) != key {
		return 0, false
	}
	return time.Weekday(n % 7), true
}

// ISOWeekday returns the ISO number of wd: Monday=1 ... Sunday=7.
func ISOWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}
