package importer

import (
	"fmt"
	"io"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// OFXParser reads bank and credit card statements in OFX format.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Parse returns every posted transaction in the statement. OFX amounts are
// already signed from the account holder's point of view.
func (p *OFXParser) Parse(r io.Reader) (Parsed, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("reading OFX: %w", err)
	}

	var lists []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}

	var out Parsed
	row := 0
	for _, list := range lists {
		for _, tran := range list.Transactions {
			row++
			desc := string(tran.Name)
			if desc == "" {
				desc = string(tran.Memo)
			}
			if desc == "" || tran.DtPosted.IsZero() {
				out.Skipped++
				continue
			}
			out.Rows = append(out.Rows, model.BankTransaction{
				Row:         row,
				Date:        model.Day(tran.DtPosted.Time),
				Description: desc,
				Amount:      decimal.NewFromBigRat(&tran.TrnAmt.Rat, 4),
				Reference:   string(tran.FiTID),
			})
		}
	}
	return out, nil
}
