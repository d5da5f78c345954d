package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

// ManualSourceName is the provenance name of fixed-schema and unmapped imports.
const ManualSourceName = "Manual Import"

var (
	// ErrUnknownFormat is returned for a format no parser is registered for.
	ErrUnknownFormat = errors.New("unknown import format")
	// ErrParse wraps a parser's failure to read a document at all.
	ErrParse = errors.New("unreadable import")
)

// Parsed is what a Parser extracted from one document.
type Parsed struct {
	Rows    []model.BankTransaction
	Skipped int
}

// Parser converts one bank export into BankTransactions.
type Parser interface {
	Parse(r io.Reader) (Parsed, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&OFXParser{})
	return r
}

// AutoFill reports a category the Suggester filled in.
type AutoFill struct {
	Row               int
	Description       string
	SuggestedCategory string
}

// Result is the output of one import.
type Result struct {
	Transactions []model.Transaction
	AutoFilled   []AutoFill
	Skipped      int
}

// ImportOptions carries per-import context.
type ImportOptions struct {
	// User is the household member the rows belong to.
	User string
	// SourceID and SourceName set provenance for format imports. Mapped
	// imports always use their source.
	SourceID   string
	SourceName string
}

// Importer turns bank exports into normalized ledger transactions.
type Importer struct {
	ids       id.Generator
	suggester *categorize.Suggester
	registry  *Registry
	now       func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the clock used for ImportedAt.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// WithRegistry replaces the built-in parser registry.
func WithRegistry(r *Registry) Option {
	return func(im *Importer) { im.registry = r }
}

// New creates an Importer. A nil suggester disables category auto-fill.
func New(ids id.Generator, suggester *categorize.Suggester, opts ...Option) *Importer {
	im := &Importer{
		ids:       ids,
		suggester: suggester,
		registry:  DefaultRegistry(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// ImportDefault parses a document in the fixed Chase card layout. Payment
// rows are dropped and provenance is manual.
func (im *Importer) ImportDefault(doc string, opts ImportOptions) Result {
	parsed := (&ChaseParser{}).parseString(doc)
	meta := im.metadata("", ManualSourceName)
	return im.normalize(parsed, meta, opts.User, nil)
}

// ImportMapped parses a document through src's column mapping. Rows without
// a category are offered to the Suggester when existing is non-empty.
func (im *Importer) ImportMapped(doc string, src model.Source, existing []model.Transaction, opts ImportOptions) Result {
	parsed := (&MappedParser{Source: src}).parseString(doc)
	meta := im.metadata(src.ID, src.Name)
	return im.normalize(parsed, meta, opts.User, existing)
}

// ImportFormat parses r with the registered parser for format.
func (im *Importer) ImportFormat(format string, r io.Reader, opts ImportOptions) (Result, error) {
	p := im.registry.Get(format)
	if p == nil {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	parsed, err := p.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parsing %s: %w", ErrParse, p.Format(), err)
	}
	name := opts.SourceName
	if opts.SourceID == "" && name == "" {
		name = ManualSourceName
	}
	return im.normalize(parsed, im.metadata(opts.SourceID, name), opts.User, nil), nil
}

func (im *Importer) metadata(sourceID, sourceName string) model.Metadata {
	return model.Metadata{
		SourceID:   sourceID,
		SourceName: sourceName,
		ImportedAt: im.now().UTC(),
	}
}

// normalize turns signed rows into ledger transactions: magnitude in Amount,
// direction in Type, fresh ID and provenance on each.
func (im *Importer) normalize(parsed Parsed, meta model.Metadata, user string, existing []model.Transaction) Result {
	res := Result{Skipped: parsed.Skipped}
	for _, row := range parsed.Rows {
		typ := model.TypeIncome
		if row.Amount.IsNegative() {
			typ = model.TypeExpense
		}

		category := strings.TrimSpace(row.Category)
		if category == "" {
			category = model.Uncategorized
		}
		if category == model.Uncategorized && len(existing) > 0 && im.suggester != nil {
			if cat, ok := im.suggester.Suggest(row.Description, existing); ok {
				category = cat
				res.AutoFilled = append(res.AutoFilled, AutoFill{
					Row:               row.Row,
					Description:       row.Description,
					SuggestedCategory: cat,
				})
			}
		}

		res.Transactions = append(res.Transactions, model.Transaction{
			ID:          im.ids.NewID(),
			Date:        row.Date,
			Description: row.Description,
			Category:    category,
			Amount:      row.Amount.Abs(),
			Type:        typ,
			User:        user,
			Metadata:    meta,
		})
	}
	return res
}
