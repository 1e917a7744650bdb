package roster

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// scheduleHTML renders rows into a Confluence-style table.
func scheduleHTML(class string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"table-wrap\">")
	fmt.Fprintf(&b, "<table class=%q><tbody>", class)
	for i, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			if i < 2 {
				fmt.Fprintf(&b, "<th class=\"confluenceTh\">%s</th>", cell)
			} else {
				fmt.Fprintf(&b, "<td class=\"confluenceTd\">%s</td>", cell)
			}
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div></body></html>")
	return b.String()
}

func mustDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func monthHeader(days int) []string {
	h := make([]string, days)
	for i := range h {
		h[i] = fmt.Sprintf("%02d", i+1)
	}
	return h
}

func TestLocateTable_NotFound(t *testing.T) {
	doc := mustDoc(t, `<html><body><table class="other"><tr><td>01</td></tr><tr><td>x</td></tr></table></body></html>`)
	_, err := LocateTable(doc, DefaultTableClass)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestLocateTable_HeaderRowWithinFirstFive(t *testing.T) {
	doc := mustDoc(t, scheduleHTML(DefaultTableClass,
		[]string{"Сотрудник", "Число месяца"},
		[]string{"01", "02", "03"},
		[]string{"Иванов", "О", "", "Р"},
	))
	table, err := LocateTable(doc, DefaultTableClass)
	require.NoError(t, err)
	assert.Equal(t, 1, table.HeaderIndex)
	assert.Equal(t, Row{"01", "02", "03"}, table.Header())
	assert.Len(t, table.Rows, 3)
}

func TestLocateTable_HeaderRowBeyondScanLimit(t *testing.T) {
	rows := [][]string{}
	for i := 0; i < headerScanRows; i++ {
		rows = append(rows, []string{"label", "text"})
	}
	rows = append(rows, []string{"01", "02"})
	doc := mustDoc(t, scheduleHTML(DefaultTableClass, rows...))
	_, err := LocateTable(doc, DefaultTableClass)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeaderRowNotFound))
}

func TestLocateTable_TooFewRows(t *testing.T) {
	doc := mustDoc(t, scheduleHTML(DefaultTableClass, []string{"01", "02"}))
	_, err := LocateTable(doc, DefaultTableClass)
	assert.ErrorIs(t, err, ErrHeaderRowNotFound)
}

func TestLocateTable_OutOfRangeNumbersIgnored(t *testing.T) {
	doc := mustDoc(t, scheduleHTML(DefaultTableClass,
		[]string{"2025", "0", "32"},
		[]string{"17", "18"},
		[]string{"Иванов", "О", "Р"},
	))
	table, err := LocateTable(doc, DefaultTableClass)
	require.NoError(t, err)
	assert.Equal(t, 1, table.HeaderIndex)
}

func TestLocateTable_FirstMatchingTableWins(t *testing.T) {
	first := scheduleHTML(DefaultTableClass, []string{"x"}, []string{"05"}, []string{"Первый", "О"})
	second := scheduleHTML(DefaultTableClass, []string{"x"}, []string{"05"}, []string{"Второй", "О"})
	doc := mustDoc(t, first+second)
	table, err := LocateTable(doc, DefaultTableClass)
	require.NoError(t, err)
	assert.Equal(t, "Первый", table.Rows[2][0])
}

func TestLocateTable_DecodesEntities(t *testing.T) {
	doc := mustDoc(t, scheduleHTML(DefaultTableClass,
		[]string{"&nbsp;Сотрудник&nbsp;"},
		[]string{"&nbsp;01&nbsp;", "02"},
		[]string{"Смирнов &amp; Ко", "О", ""},
	))
	table, err := LocateTable(doc, DefaultTableClass)
	require.NoError(t, err)
	assert.Equal(t, "Сотрудник", table.Rows[0][0])
	assert.Equal(t, "01", table.Header()[0])
	assert.Equal(t, "Смирнов & Ко", table.Rows[2][0])
}

func TestResolveColumn_EveryDay(t *testing.T) {
	header := Row(monthHeader(31))
	for day := 1; day <= 31; day++ {
		col, err := ResolveColumn(header, day)
		require.NoError(t, err, "day %d", day)
		assert.Equal(t, day-1, col, "day %d", day)
	}
}

func TestResolveColumn_AbsentDay(t *testing.T) {
	header := Row(monthHeader(28))
	for _, day := range []int{29, 30, 31} {
		_, err := ResolveColumn(header, day)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDateColumnNotFound)

		var dce *DateColumnError
		require.True(t, errors.As(err, &dce))
		assert.Equal(t, day, dce.Day)
		assert.Len(t, dce.Headers, diagnosticHeaders)
	}
}

func TestResolveColumn_StripsNonDigits(t *testing.T) {
	header := Row{"пн 1", "вт 2", "ср 3"}
	col, err := ResolveColumn(header, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, col)
}

func TestResolveColumn_FirstOccurrenceWins(t *testing.T) {
	header := Row{"01", "7", "07", "02"}
	col, err := ResolveColumn(header, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, col)
}

func TestMarkers_Classify(t *testing.T) {
	m := DefaultMarkers()
	tests := []struct {
		cell string
		want Duty
	}{
		{"О", Primary}, // Cyrillic
		{"O", Primary}, // Latin
		{"о", Primary},
		{"o", Primary},
		{"Р", Backup},
		{"P", Backup},
		{"р", Backup},
		{"p", Backup},
		{"", Unassigned},
		{"отпуск", Unassigned},
		{"ОР", Unassigned},
		{"x", Unassigned},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%q", tc.cell), func(t *testing.T) {
			assert.Equal(t, tc.want, m.Classify(tc.cell))
		})
	}
}

func TestMarkers_WithDefaults(t *testing.T) {
	m := Markers{Primary: []string{"Д"}}.WithDefaults()
	assert.Equal(t, []string{"Д"}, m.Primary)
	assert.Equal(t, DefaultMarkers().Backup, m.Backup)
	assert.Equal(t, DefaultMarkers().Placeholders, m.Placeholders)
}

func TestMarkers_WithDefaultsFoldsCase(t *testing.T) {
	m := Markers{
		Primary:      []string{"д"},
		Backup:       []string{" z "},
		Placeholders: []string{"Employee", "ФИО"},
	}.WithDefaults()

	for _, cell := range []string{"д", "Д"} {
		assert.Equal(t, Primary, m.Classify(cell), "cell %q", cell)
	}
	for _, cell := range []string{"z", "Z"} {
		assert.Equal(t, Backup, m.Classify(cell), "cell %q", cell)
	}
	assert.Equal(t, Unassigned, m.Classify("О"), "defaults are replaced, not merged")
	assert.True(t, m.IsPlaceholder("Employee"))
	assert.True(t, m.IsPlaceholder("EMPLOYEE"))
	assert.True(t, m.IsPlaceholder("фио"))
	assert.False(t, m.IsPlaceholder("сотрудник"))
}

func TestParser_CustomMarkers(t *testing.T) {
	p := NewParser("", Markers{Primary: []string{"д"}, Placeholders: []string{"Employee"}}, nil)
	src := scheduleHTML(DefaultTableClass,
		[]string{"Employee", "Число месяца"},
		monthHeader(3),
		[]string{"Employee", "д", "д", "д"},
		[]string{"Иванов", "", "д", ""},
		[]string{"Петров", "", "Р", ""},
	)
	r, err := p.Parse(strings.NewReader(src), time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"Иванов"}, r.Primary)
	assert.Equal(t, []string{"Петров"}, r.Backup)
}

func TestExtract_Scenario(t *testing.T) {
	table := &Table{
		Rows: []Row{
			{"01", "02", "03"},
			{"Иванов", "O", "Р", "O"},
		},
		HeaderIndex: 0,
	}
	col, err := ResolveColumn(table.Header(), 2)
	require.NoError(t, err)
	require.Equal(t, 1, col)

	r := Extract(table, col, DefaultMarkers())
	assert.Equal(t, []string{"Иванов"}, r.Backup)
	assert.Empty(t, r.Primary)
}

// The duty for header column N is read from employee column N+1. The rows
// below are built so that reading column N instead gives the opposite role.
func TestExtract_EmployeeColumnOffset(t *testing.T) {
	table := &Table{
		Rows: []Row{
			{"Сотрудник", "Число месяца"},
			{"01", "02", "03", "04"},
			{"Петров", "Р", "Р", "О", "Р"},
			{"Сидоров", "О", "О", "Р", "О"},
		},
		HeaderIndex: 1,
	}
	col, err := ResolveColumn(table.Header(), 2)
	require.NoError(t, err)
	require.Equal(t, 1, col)

	r := Extract(table, col, DefaultMarkers())
	assert.Equal(t, []string{"Петров"}, r.Primary, "duty must be read at col+1")
	assert.Equal(t, []string{"Сидоров"}, r.Backup, "duty must be read at col+1")
}

func TestExtract_SkipsShortRowsAndPlaceholders(t *testing.T) {
	table := &Table{
		Rows: []Row{
			{"01", "02", "03"},
			{"Сотрудник", "О", "О", "О"},
			{"EMPLOYEE", "О", "О", "О"},
			{"", "О", "О", "О"},
			{"Коротков", "О", "О"},
			{"Длинных", "", "", "О"},
		},
	}
	r := Extract(table, 2, DefaultMarkers())
	assert.Equal(t, []string{"Длинных"}, r.Primary)
	assert.Empty(t, r.Backup)
}

func TestExtract_RowsAboveHeaderIgnored(t *testing.T) {
	table := &Table{
		Rows: []Row{
			{"Иванов", "О", "О"},
			{"01", "02"},
			{"Петров", "Р", "Р"},
		},
		HeaderIndex: 1,
	}
	r := Extract(table, 0, DefaultMarkers())
	assert.Empty(t, r.Primary)
	assert.Equal(t, []string{"Петров"}, r.Backup)
}

func TestExtract_NameInOneSetOnly(t *testing.T) {
	table := &Table{
		Rows: []Row{
			{"01"},
			{"Иванов", "О"},
			{"Иванов", "Р"},
		},
	}
	r := Extract(table, 0, DefaultMarkers())
	assert.Equal(t, []string{"Иванов"}, r.Primary)
	assert.Empty(t, r.Backup)
}

func TestParser_Parse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewParser("", Markers{}, zap.New(core))

	src := scheduleHTML(DefaultTableClass,
		[]string{"Сотрудник", "Число месяца"},
		monthHeader(31),
		append([]string{"Иванов"}, repeat("", 16, "О", 14)...),
		append([]string{"Петров"}, repeat("", 16, "р", 14)...),
		append([]string{"Сидоров"}, repeat("О", 16, "", 14)...),
	)
	date := time.Date(2025, time.March, 17, 9, 0, 0, 0, time.UTC)
	r, err := p.Parse(strings.NewReader(src), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"Иванов"}, r.Primary)
	assert.Equal(t, []string{"Петров"}, r.Backup)

	assert.Equal(t, 1, logs.FilterMessage("date column found").Len())
	assert.Equal(t, 1, logs.FilterMessage("primary duty found").Len())
}

func TestParser_ParseMissingTable(t *testing.T) {
	p := NewParser(DefaultTableClass, DefaultMarkers(), nil)
	r, err := p.Parse(strings.NewReader("<html><body><p>nothing</p></body></html>"), time.Now())
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.True(t, r.Empty())
}

func TestParser_ParseMissingDay(t *testing.T) {
	p := NewParser(DefaultTableClass, DefaultMarkers(), nil)
	src := scheduleHTML(DefaultTableClass,
		[]string{"Сотрудник"},
		monthHeader(28),
		[]string{"Иванов", "О"},
	)
	_, err := p.Parse(strings.NewReader(src), time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrDateColumnNotFound)
}

// repeat returns n copies of a followed by m copies of b.
func repeat(a string, n int, b string, m int) []string {
	out := make([]string, 0, n+m)
	for i := 0; i < n; i++ {
		out = append(out, a)
	}
	for i := 0; i < m; i++ {
		out = append(out, b)
	}
	return out
}
