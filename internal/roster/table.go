package roster

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableClass marks the schedule table in Confluence exports.
const DefaultTableClass = "confluenceTable"

// headerScanRows limits how deep the day header row is searched for.
const headerScanRows = 5

// Table is the duty schedule table flattened to cell texts.
type Table struct {
	Rows        []Row
	HeaderIndex int
}

// Header returns the day header row.
func (t *Table) Header() Row {
	return t.Rows[t.HeaderIndex]
}

// LocateTable finds the first table with the given class and the row
// holding day-of-month labels within its first rows.
func LocateTable(doc *goquery.Document, class string) (*Table, error) {
	if class == "" {
		class = DefaultTableClass
	}
	sel := doc.Find("table." + class).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: no table with class %q", ErrTableNotFound, class)
	}

	var rows []Row
	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		rows = append(rows, rowText(tr))
	})
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: table has too few rows (%d)", ErrHeaderRowNotFound, len(rows))
	}

	limit := min(len(rows), headerScanRows)
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if isDayNumber(cell) {
				return &Table{Rows: rows, HeaderIndex: i}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: none of the first %d rows has a day number", ErrHeaderRowNotFound, limit)
}

func rowText(tr *goquery.Selection) Row {
	cells := tr.Find("th, td")
	row := make(Row, 0, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		row = append(row, cellText(cell))
	})
	return row
}

func cellText(cell *goquery.Selection) string {
	return strings.TrimSpace(html.UnescapeString(cell.Text()))
}

// isDayNumber reports whether s consists only of digits forming 1..31.
func isDayNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 31
}
