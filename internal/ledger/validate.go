package ledger

import (
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ValidationError describes a single ledger invariant violation.
type ValidationError struct {
	Rule          string
	TransactionID string
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.TransactionID, e.Description)
}

// Rule names reported in ValidationError.
const (
	RuleAmount   = "amount"
	RuleType     = "type"
	RuleLabels   = "labels"
	RuleUniqueID = "unique-id"
	RuleTransfer = "transfer"
)

// Validate checks a ledger snapshot and returns every violation found.
func Validate(txns []model.Transaction) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(txns))
	legs := make(map[string][]model.Transaction)
	var transferOrder []string

	for _, t := range txns {
		if t.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:          RuleAmount,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("amount %s is negative", t.Amount),
			})
		}

		if !t.Type.Valid() {
			errs = append(errs, ValidationError{
				Rule:          RuleType,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("unknown type %q", t.Type),
			})
		}

		if len(t.Labels) > model.MaxLabels {
			errs = append(errs, ValidationError{
				Rule:          RuleLabels,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("%d labels, at most %d allowed", len(t.Labels), model.MaxLabels),
			})
		}

		if seen[t.ID] {
			errs = append(errs, ValidationError{
				Rule:          RuleUniqueID,
				TransactionID: t.ID,
				Description:   "duplicate transaction ID",
			})
		}
		seen[t.ID] = true

		if t.IsPaired() {
			tid := t.Transfer.TransferID
			if _, ok := legs[tid]; !ok {
				transferOrder = append(transferOrder, tid)
			}
			legs[tid] = append(legs[tid], t)
		}
	}

	for _, tid := range transferOrder {
		if problem := checkTransfer(legs[tid]); problem != "" {
			errs = append(errs, ValidationError{
				Rule:          RuleTransfer,
				TransactionID: tid,
				Description:   problem,
			})
		}
	}
	return errs
}

// checkTransfer returns a description of what is wrong with a transfer's legs,
// or "" when they form a valid pair.
func checkTransfer(legs []model.Transaction) string {
	if len(legs) != 2 {
		ids := make([]string, len(legs))
		for i, l := range legs {
			ids[i] = l.ID
		}
		return fmt.Sprintf("expected 2 legs, got %d (%s)", len(legs), strings.Join(ids, ", "))
	}
	a, b := legs[0], legs[1]
	switch {
	case a.Type == b.Type:
		return fmt.Sprintf("legs %s and %s are both %s", a.ID, b.ID, a.Type)
	case !a.Amount.Equal(b.Amount):
		return fmt.Sprintf("leg amounts differ (%s != %s)", a.Amount.StringFixed(2), b.Amount.StringFixed(2))
	case a.Transfer.TransferType != b.Transfer.TransferType:
		return fmt.Sprintf("transfer types differ (%s != %s)", a.Transfer.TransferType, b.Transfer.TransferType)
	}
	return ""
}
