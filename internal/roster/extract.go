package roster

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Duty is the classification of a single schedule cell.
type Duty int

const (
	Unassigned Duty = iota
	Primary
	Backup
)

func (d Duty) String() string {
	switch d {
	case Primary:
		return "primary"
	case Backup:
		return "backup"
	default:
		return "unassigned"
	}
}

func upper(s string) string { return cases.Upper(language.Russian).String(s) }

func lower(s string) string { return cases.Lower(language.Russian).String(s) }

// Classify maps a duty cell to a Duty. Matching is case-insensitive for
// markers normalized by WithDefaults.
func (m Markers) Classify(cell string) Duty {
	v := upper(cell)
	switch {
	case slices.Contains(m.Primary, v):
		return Primary
	case slices.Contains(m.Backup, v):
		return Backup
	default:
		return Unassigned
	}
}

// IsPlaceholder reports whether name is a column label, not an employee.
func (m Markers) IsPlaceholder(name string) bool {
	return slices.Contains(m.Placeholders, lower(name))
}

// Extract walks the employee rows below the header and collects duties
// for header column col.
//
// An employee row starts with the name, so the duty for header column col
// sits one cell to the right, at col+1.
func Extract(t *Table, col int, m Markers) Roster {
	var r Roster
	seen := make(map[string]struct{})
	dutyCol := col + 1
	for _, row := range t.Rows[t.HeaderIndex+1:] {
		if len(row) <= dutyCol {
			continue
		}
		name := row[0]
		if name == "" || m.IsPlaceholder(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		switch m.Classify(row[dutyCol]) {
		case Primary:
			r.Primary = append(r.Primary, name)
		case Backup:
			r.Backup = append(r.Backup, name)
		default:
			continue
		}
		seen[name] = struct{}{}
	}
	return r
}
