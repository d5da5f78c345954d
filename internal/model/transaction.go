package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType is the direction of money for a transaction.
type TxnType string

const (
	TypeExpense TxnType = "expense"
	TypeIncome  TxnType = "income"
)

// Opposite returns the other direction.
func (t TxnType) Opposite() TxnType {
	if t == TypeExpense {
		return TypeIncome
	}
	return TypeExpense
}

// Valid reports whether t is a known direction.
func (t TxnType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// TransferType distinguishes a transfer between one member's own accounts
// from a transfer between two household members.
type TransferType string

const (
	TransferSelf TransferType = "self"
	TransferUser TransferType = "user"
)

const (
	// Uncategorized is the category of a transaction nobody has categorized.
	Uncategorized = "Uncategorized"
	// ManualSource is the provenance key of rows with no source ID.
	ManualSource = "manual"
	// MaxLabels is the most labels a transaction may carry.
	MaxLabels = 3
)

// Metadata records where a transaction entered the ledger.
type Metadata struct {
	SourceID   string // empty for manual entry and fixed-schema imports
	SourceName string
	ImportedAt time.Time
}

// SourceKey returns the source ID, or ManualSource when there is none.
func (m Metadata) SourceKey() string {
	if m.SourceID == "" {
		return ManualSource
	}
	return m.SourceID
}

// TransferInfo is stamped on both legs of a detected transfer.
type TransferInfo struct {
	IsTransfer               bool
	TransferID               string
	TransferType             TransferType
	ExcludedFromCalculations bool
	UserOverride             bool
}

// Transaction is one row of the unified ledger.
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal // always >= 0; direction lives in Type
	Type        TxnType
	User        string
	Labels      []string
	Metadata    Metadata
	Transfer    *TransferInfo
}

// Clone returns a deep copy of t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Labels != nil {
		c.Labels = append([]string(nil), t.Labels...)
	}
	if t.Transfer != nil {
		ti := *t.Transfer
		c.Transfer = &ti
	}
	return c
}

// IsPaired reports whether t is already one leg of a transfer.
func (t Transaction) IsPaired() bool {
	return t.Transfer != nil && t.Transfer.IsTransfer
}

// IsOverridden reports whether a user has taken control of t's transfer flags.
func (t Transaction) IsOverridden() bool {
	return t.Transfer != nil && t.Transfer.UserOverride
}

// Day returns the calendar date of d at UTC midnight.
func Day(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := Day(a).Sub(Day(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours()+0.5) / 24
}

// CloneAll deep-copies a snapshot.
func CloneAll(txns []Transaction) []Transaction {
	if txns == nil {
		return nil
	}
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = t.Clone()
	}
	return out
}

// BankTransaction is a parsed export row before it becomes a Transaction.
type BankTransaction struct {
	Row         int // 1-based data row, header excluded
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal // negative = expense, positive = income
	Reference   string
}

// TransferPair is one detected transfer. It is never persisted; its effect is
// the TransferInfo stamped on both legs.
type TransferPair struct {
	Credit     Transaction // the income leg
	Debit      Transaction // the expense leg
	TransferID string
	Confidence decimal.Decimal
}
