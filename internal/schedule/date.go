package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is the day/month/year form used on the schedule page and as file keys.
	DateLayout  = "2/1/2006"
	isoLayout   = "2006-01-02"
	clockLayout = "15:04"
)

var timeRangePattern = regexp.MustCompile(`^(\d{2}:\d{2}) - (\d{2}:\d{2})$`)

// ParseDate parses a dd/mm/yyyy date key
func ParseDate(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want day/month/year", key)
	}
	return t, nil
}

// TimeRange is a meeting time such as "09:15 - 11:00".
type TimeRange struct {
	Start string
	End   string
}

// ParseTimeRange parses the exact "HH:MM - HH:MM" form.
func ParseTimeRange(s string) (TimeRange, error) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeRange{}, fmt.Errorf("invalid time range %q: want HH:MM - HH:MM", s)
	}
	tr := TimeRange{Start: m[1], End: m[2]}
	if err := tr.Validate(); err != nil {
		return TimeRange{}, err
	}
	return tr, nil
}

// Validate checks that both ends are valid clock times
func (tr TimeRange) Validate() error {
	if _, err := time.Parse(clockLayout, tr.Start); err != nil || len(tr.Start) != 5 {
		return fmt.Errorf("invalid start time %q", tr.Start)
	}
	if _, err := time.Parse(clockLayout, tr.End); err != nil || len(tr.End) != 5 {
		return fmt.Errorf("invalid end time %q", tr.End)
	}
	return nil
}

// String returns the canonical "HH:MM - HH:MM" form
func (tr TimeRange) String() string {
	return tr.Start + " - " + tr.End
}

// StartMinutes returns the start time as minutes since midnight, or -1 if malformed.
func (tr TimeRange) StartMinutes() int {
	return minutes(tr.Start)
}

// EndMinutes returns the end time as minutes since midnight, or -1 if malformed.
func (tr TimeRange) EndMinutes() int {
	return minutes(tr.End)
}

func minutes(clock string) int {
	if len(clock) != 5 || clock[2] != ':' {
		return -1
	}
	h, err := strconv.Atoi(clock[:2])
	if err != nil {
		return -1
	}
	m, err := strconv.Atoi(clock[3:])
	if err != nil {
		return -1
	}
	return h*60 + m
}
