package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// MappedParser parses a CSV export through a source's column mapping.
type MappedParser struct {
	Source model.Source
}

// Format returns the source ID.
func (p *MappedParser) Format() string { return p.Source.ID }

// Parse reads a mapped CSV and returns its rows with signed amounts, the
// source's income/expense flip already applied.
func (p *MappedParser) Parse(r io.Reader) (Parsed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("reading %s CSV: %w", p.Source.ID, err)
	}
	return p.parseString(string(data)), nil
}

func (p *MappedParser) parseString(doc string) Parsed {
	lines := splitLines(doc)
	if len(lines) <= 1 {
		return Parsed{}
	}

	columns := p.columnIndex(SplitLine(lines[0]))

	var out Parsed
	for i, line := range lines[1:] {
		txn, ok := p.parseRow(SplitLine(line), columns)
		if !ok {
			out.Skipped++
			continue
		}
		txn.Row = i + 1
		out.Rows = append(out.Rows, txn)
	}
	return out
}

// columnIndex maps header positions to standard columns. Headers the mapping
// does not mention, and Ignore mappings, are left out.
func (p *MappedParser) columnIndex(header []string) map[int]model.StandardColumn {
	byName := make(map[string]model.StandardColumn, len(p.Source.Mappings))
	for _, m := range p.Source.Mappings {
		if m.StandardColumn == model.ColumnIgnore {
			continue
		}
		byName[strings.ToLower(strings.TrimSpace(m.CSVColumn))] = m.StandardColumn
	}

	idx := make(map[int]model.StandardColumn)
	for i, h := range header {
		if col, ok := byName[strings.ToLower(h)]; ok {
			idx[i] = col
		}
	}
	return idx
}

func (p *MappedParser) parseRow(rec []string, columns map[int]model.StandardColumn) (model.BankTransaction, bool) {
	var (
		txn       model.BankTransaction
		hasDate   bool
		rawAmount string
	)
	for i, val := range rec {
		switch columns[i] {
		case model.ColumnDate:
			txn.Date, hasDate = ParseDate(val, p.Source.DateFormat)
		case model.ColumnDescription:
			txn.Description = val
		case model.ColumnCategory:
			txn.Category = val
		case model.ColumnAmount:
			rawAmount = val
		}
	}

	amount := ParseAmount(rawAmount)
	if p.Source.FlipIncomeExpense {
		amount = amount.Neg()
	}
	if !hasDate || txn.Description == "" || !amount.Abs().IsPositive() {
		return model.BankTransaction{}, false
	}
	txn.Amount = amount
	return txn, true
}
