package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(txnID string, d time.Time, desc, amount string, typ model.TxnType) model.Transaction {
	return model.Transaction{
		ID:          txnID,
		Date:        d,
		Description: desc,
		Category:    model.Uncategorized,
		Amount:      dec(amount),
		Type:        typ,
	}
}

func TestMerge_AddsAndSortsNewestFirst(t *testing.T) {
	existing := []model.Transaction{
		txn("e1", date(2024, 1, 5), "Groceries", "50", model.TypeExpense),
		txn("e2", date(2024, 1, 1), "Salary", "3000", model.TypeIncome),
	}
	candidates := []model.Transaction{
		txn("n1", date(2024, 1, 3), "Coffee", "4.50", model.TypeExpense),
		txn("n2", date(2024, 1, 9), "Gas", "40", model.TypeExpense),
	}

	res := Merge(existing, candidates)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 0, res.Duplicates)

	var ids []string
	for _, t := range res.Ledger {
		ids = append(ids, t.ID)
	}
	assert.Equal(t, []string{"n2", "e1", "n1", "e2"}, ids)
}

func TestMerge_DropsDuplicatesRegardlessOfProvenance(t *testing.T) {
	e := txn("e1", date(2024, 1, 5), "Groceries", "50.00", model.TypeExpense)
	e.Metadata = model.Metadata{SourceID: "bankA"}
	dup := txn("n1", date(2024, 1, 5), "Groceries", "50", model.TypeExpense)
	dup.Metadata = model.Metadata{SourceID: "bankB"}
	dup.User = "someone-else"

	res := Merge([]model.Transaction{e}, []model.Transaction{dup})
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "e1", res.Ledger[0].ID)
}

func TestMerge_KeyFields(t *testing.T) {
	e := txn("e1", date(2024, 1, 5), "Groceries", "50", model.TypeExpense)
	tests := []struct {
		name string
		cand model.Transaction
	}{
		{"date", txn("n", date(2024, 1, 6), "Groceries", "50", model.TypeExpense)},
		{"description", txn("n", date(2024, 1, 5), "groceries", "50", model.TypeExpense)},
		{"amount", txn("n", date(2024, 1, 5), "Groceries", "50.01", model.TypeExpense)},
		{"type", txn("n", date(2024, 1, 5), "Groceries", "50", model.TypeIncome)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Merge([]model.Transaction{e}, []model.Transaction{tt.cand})
			assert.Equal(t, 1, res.Added)
		})
	}
}

func TestMerge_SameDayRowsInOneBatchAreKept(t *testing.T) {
	a := txn("n1", date(2024, 1, 5), "Coffee", "3", model.TypeExpense)
	b := txn("n2", date(2024, 1, 5), "Coffee", "3", model.TypeExpense)
	res := Merge(nil, []model.Transaction{a, b})
	assert.Equal(t, 2, res.Added)
}

func TestMerge_Idempotent(t *testing.T) {
	existing := []model.Transaction{txn("e1", date(2024, 1, 5), "Rent", "1200", model.TypeExpense)}
	candidates := []model.Transaction{
		txn("n1", date(2024, 1, 3), "Coffee", "4.50", model.TypeExpense),
		txn("n2", date(2024, 1, 5), "Rent", "1200", model.TypeExpense),
	}

	once := Merge(existing, candidates)
	twice := Merge(once.Ledger, candidates)
	assert.Equal(t, once.Ledger, twice.Ledger)
	assert.Equal(t, 0, twice.Added)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := []model.Transaction{
		txn("e1", date(2024, 1, 1), "Old", "1", model.TypeExpense),
		txn("e2", date(2024, 1, 9), "New", "1", model.TypeExpense),
	}
	existing[0].Labels = []string{"keep"}

	res := Merge(existing, []model.Transaction{txn("n1", date(2024, 1, 5), "Mid", "1", model.TypeExpense)})
	res.Ledger[len(res.Ledger)-1].Labels[0] = "changed"

	assert.Equal(t, "e1", existing[0].ID, "input order untouched")
	assert.Equal(t, "keep", existing[0].Labels[0])
}
