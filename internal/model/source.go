package model

import "fmt"

// StandardColumn is a ledger field a CSV column can be mapped to.
type StandardColumn string

const (
	ColumnDate        StandardColumn = "Transaction Date"
	ColumnDescription StandardColumn = "Description"
	ColumnCategory    StandardColumn = "Category"
	ColumnAmount      StandardColumn = "Amount"
	ColumnIgnore      StandardColumn = "Ignore"
)

// Valid reports whether c is one of the known standard columns.
func (c StandardColumn) Valid() bool {
	switch c {
	case ColumnDate, ColumnDescription, ColumnCategory, ColumnAmount, ColumnIgnore:
		return true
	}
	return false
}

// ColumnMapping maps one CSV header to one standard column.
type ColumnMapping struct {
	CSVColumn      string
	StandardColumn StandardColumn
}

// Source is a named import origin with its column mapping.
type Source struct {
	ID                string
	Name              string
	Mappings          []ColumnMapping
	FlipIncomeExpense bool
	DateFormat        string // Go layout; empty tries the common layouts
}

// Validate checks that the mapping is usable: known standard columns, at most
// one CSV column per non-Ignore standard column, and the required columns
// present.
func (s Source) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("source %q: missing id", s.Name)
	}
	seen := make(map[StandardColumn]string)
	for _, m := range s.Mappings {
		if !m.StandardColumn.Valid() {
			return fmt.Errorf("source %s: unknown standard column %q", s.ID, m.StandardColumn)
		}
		if m.StandardColumn == ColumnIgnore {
			continue
		}
		if prev, ok := seen[m.StandardColumn]; ok {
			return fmt.Errorf("source %s: %q mapped from both %q and %q", s.ID, m.StandardColumn, prev, m.CSVColumn)
		}
		seen[m.StandardColumn] = m.CSVColumn
	}
	for _, req := range []StandardColumn{ColumnDate, ColumnDescription, ColumnAmount} {
		if _, ok := seen[req]; !ok {
			return fmt.Errorf("source %s: no column mapped to %q", s.ID, req)
		}
	}
	return nil
}
