package api

import (
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

// Transaction is the JSON shape of a ledger row.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        model.TxnType   `json:"type"`
	User        string          `json:"user,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	SourceID    string          `json:"sourceId,omitempty"`
	SourceName  string          `json:"sourceName,omitempty"`
	Transfer    *Transfer       `json:"transfer,omitempty"`
}

// Transfer is the JSON shape of a transaction's transfer flags.
type Transfer struct {
	IsTransfer bool               `json:"isTransfer"`
	TransferID string             `json:"transferId,omitempty"`
	Type       model.TransferType `json:"transferType,omitempty"`
	Excluded   bool               `json:"excludedFromCalculations"`
	Override   bool               `json:"userOverride"`
}

// TransferPair is one transfer with both legs.
type TransferPair struct {
	TransferID string          `json:"transferId"`
	Type       string          `json:"type,omitempty"`
	Confidence decimal.Decimal `json:"confidence"`
	Credit     Transaction     `json:"credit"`
	Debit      Transaction     `json:"debit"`
}

// AutoFill is one category filled in by the suggester.
type AutoFill struct {
	Row               int    `json:"row"`
	Description       string `json:"description"`
	SuggestedCategory string `json:"suggestedCategory"`
}

// ImportResponse is the JSON response from POST /api/import.
type ImportResponse struct {
	Imported   int            `json:"imported"`
	Skipped    int            `json:"skipped"`
	Duplicates int            `json:"duplicates"`
	AutoFilled []AutoFill     `json:"autoFilled"`
	Transfers  []TransferPair `json:"transfers"`
	Commit     string         `json:"commit,omitempty"`
}

// OverrideRequest is the body of PATCH /api/transactions/:id/override.
type OverrideRequest struct {
	Excluded *bool `json:"excluded"`
}

func toTransaction(t model.Transaction) Transaction {
	out := Transaction{
		ID:          t.ID,
		Date:        t.Date.Format("2006-01-02"),
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Type,
		User:        t.User,
		Labels:      t.Labels,
		SourceID:    t.Metadata.SourceID,
		SourceName:  t.Metadata.SourceName,
	}
	if ti := t.Transfer; ti != nil {
		out.Transfer = &Transfer{
			IsTransfer: ti.IsTransfer,
			TransferID: ti.TransferID,
			Type:       ti.TransferType,
			Excluded:   ti.ExcludedFromCalculations,
			Override:   ti.UserOverride,
		}
	}
	return out
}

func toTransactions(txns []model.Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = toTransaction(t)
	}
	return out
}

func fromPairs(pairs []model.TransferPair) []TransferPair {
	out := make([]TransferPair, len(pairs))
	for i, p := range pairs {
		var kind string
		if p.Credit.Transfer != nil {
			kind = string(p.Credit.Transfer.TransferType)
		}
		out[i] = TransferPair{
			TransferID: p.TransferID,
			Type:       kind,
			Confidence: p.Confidence,
			Credit:     toTransaction(p.Credit),
			Debit:      toTransaction(p.Debit),
		}
	}
	return out
}

func fromViews(views []ledger.TransferView) []TransferPair {
	out := make([]TransferPair, len(views))
	for i, v := range views {
		out[i] = TransferPair{
			TransferID: v.TransferID,
			Type:       string(v.Type),
			Confidence: v.Confidence,
			Credit:     toTransaction(v.Credit),
			Debit:      toTransaction(v.Debit),
		}
	}
	return out
}

func fromAutoFills(fills []importer.AutoFill) []AutoFill {
	out := make([]AutoFill, len(fills))
	for i, f := range fills {
		out[i] = AutoFill{Row: f.Row, Description: f.Description, SuggestedCategory: f.SuggestedCategory}
	}
	return out
}
