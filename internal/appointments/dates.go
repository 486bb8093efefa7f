package appointments

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format accepted by the by-date listing.
const DayLayout = "2006-01-02"

// acceptedLayouts are tried in order. Zone-less values are read as UTC.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseAppointmentDate reads an appointment timestamp.
func ParseAppointmentDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized appointment date %q", value)
}

// DayBounds returns the start of a UTC calendar day and the start of the
// next one.
func DayBounds(day string) (time.Time, time.Time, error) {
	start, err := time.Parse(DayLayout, strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = start.UTC()
	return start, start.Add(24 * time.Hour), nil
}
