package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

// ChaseParser parses the fixed six-column Chase credit card export:
//
//	Transaction Date,Post Date,Description,Category,Type,Amount
//
// It never rejects a row with an error; unusable rows are counted as skipped.
type ChaseParser struct{}

const (
	chaseNumFields   = 6
	chaseColDate     = 0
	chaseColDesc     = 2
	chaseColCategory = 3
	chaseColType     = 4
	chaseColAmount   = 5

	// chaseTypePayment marks card payments, which are not spending.
	chaseTypePayment = "Payment"
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns its rows with signed amounts.
func (p *ChaseParser) Parse(r io.Reader) (Parsed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("reading chase CSV: %w", err)
	}
	return p.parseString(string(data)), nil
}

func (p *ChaseParser) parseString(doc string) Parsed {
	lines := splitLines(doc)
	if len(lines) <= 1 {
		return Parsed{}
	}

	var out Parsed
	for i, line := range lines[1:] {
		txn, ok := parseChaseRow(SplitLine(line))
		if !ok {
			out.Skipped++
			continue
		}
		txn.Row = i + 1
		out.Rows = append(out.Rows, txn)
	}
	return out
}

func parseChaseRow(rec []string) (model.BankTransaction, bool) {
	if len(rec) < chaseNumFields {
		return model.BankTransaction{}, false
	}
	if rec[chaseColType] == chaseTypePayment {
		return model.BankTransaction{}, false
	}
	date, ok := ParseDate(rec[chaseColDate], "")
	if !ok {
		return model.BankTransaction{}, false
	}

	desc := rec[chaseColDesc]
	return model.BankTransaction{
		Date:        date,
		Description: desc,
		Category:    rec[chaseColCategory],
		Amount:      ParseAmount(rec[chaseColAmount]),
		Reference:   makeChaseRef(date, desc),
	}, true
}

// makeChaseRef creates a reference like chase_20250103_GITHUB.
func makeChaseRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), prefix)
}
