package roster

import (
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Parser reads a Confluence duty schedule export and builds the Roster
// for a given date.
type Parser struct {
	tableClass string
	markers    Markers
	logger     *zap.Logger
}

func NewParser(tableClass string, markers Markers, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{tableClass: tableClass, markers: markers.WithDefaults(), logger: logger}
}

// Parse returns the roster for date. Errors wrap ErrTableNotFound,
// ErrHeaderRowNotFound or ErrDateColumnNotFound when the document does not
// have the expected layout.
func (p *Parser) Parse(r io.Reader, date time.Time) (Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Roster{}, fmt.Errorf("parse html: %w", err)
	}
	return p.ParseDocument(doc, date)
}

func (p *Parser) ParseDocument(doc *goquery.Document, date time.Time) (Roster, error) {
	table, err := LocateTable(doc, p.tableClass)
	if err != nil {
		return Roster{}, err
	}
	p.logger.Debug("day header row found",
		zap.Int("row", table.HeaderIndex),
		zap.Int("rows", len(table.Rows)))

	day := date.Day()
	col, err := ResolveColumn(table.Header(), day)
	if err != nil {
		return Roster{}, err
	}
	p.logger.Info("date column found",
		zap.Int("day", day),
		zap.Int("index", col),
		zap.String("text", table.Header()[col]))

	r := Extract(table, col, p.markers)
	for _, name := range r.Primary {
		p.logger.Debug("primary duty found", zap.String("employee", name))
	}
	for _, name := range r.Backup {
		p.logger.Debug("backup duty found", zap.String("employee", name))
	}
	return r, nil
}
