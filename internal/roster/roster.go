package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTableNotFound      = errors.New("duty table not found")
	ErrHeaderRowNotFound  = errors.New("day header row not found")
	ErrDateColumnNotFound = errors.New("date column not found")
)

// DateColumnError reports a day that has no column in the header row.
// Headers holds the first few header texts for diagnostics.
type DateColumnError struct {
	Day     int
	Headers []string
}

func (e *DateColumnError) Error() string {
	return fmt.Sprintf("column for day %d not found (headers: %s)", e.Day, strings.Join(e.Headers, ", "))
}

func (e *DateColumnError) Is(target error) bool {
	return target == ErrDateColumnNotFound
}

// Roster is the set of people on duty for a single date.
type Roster struct {
	Primary []string
	Backup  []string
}

// Empty reports whether nobody is assigned.
func (r Roster) Empty() bool {
	return len(r.Primary) == 0 && len(r.Backup) == 0
}

// Row holds decoded, trimmed cell texts of one table row.
type Row []string

// Markers is the vocabulary used to classify duty cells.
// Primary and Backup are compared against the upper-cased cell text,
// Placeholders against the lower-cased employee name.
type Markers struct {
	Primary      []string `yaml:"primary"`
	Backup       []string `yaml:"backup"`
	Placeholders []string `yaml:"placeholders"`
}

// DefaultMarkers returns the Cyrillic and Latin letters used in the
// Confluence duty schedule: О for primary duty, Р for backup.
func DefaultMarkers() Markers {
	return Markers{
		Primary:      []string{"О", "O"},
		Backup:       []string{"Р", "P"},
		Placeholders: []string{"сотрудник", "employee"},
	}
}

// WithDefaults fills empty marker lists from DefaultMarkers and folds the
// configured values to the case Classify and IsPlaceholder compare in.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	if len(m.Primary) == 0 {
		m.Primary = d.Primary
	}
	if len(m.Backup) == 0 {
		m.Backup = d.Backup
	}
	if len(m.Placeholders) == 0 {
		m.Placeholders = d.Placeholders
	}
	return Markers{
		Primary:      foldAll(m.Primary, upper),
		Backup:       foldAll(m.Backup, upper),
		Placeholders: foldAll(m.Placeholders, lower),
	}
}

func foldAll(values []string, fold func(string) string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fold(strings.TrimSpace(v))
	}
	return out
}
