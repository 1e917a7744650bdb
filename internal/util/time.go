package util

import (
	"fmt"
	"time"
)

// ParseTargetDate parses a calendar date given on the command line. The
// result is midnight in loc.
func ParseTargetDate(s string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		"2006-01-02",
		"02.01.2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}
