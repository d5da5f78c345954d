// Package ledger holds the unified transaction ledger: merging imports into a
// snapshot, persisting snapshots as CSV, and validating them.
package ledger

import (
	"sort"

	"github.com/tally-dev/tally/internal/model"
)

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Ledger     []model.Transaction
	Added      int
	Duplicates int
}

// dupKey identifies a transaction for duplicate detection. Provenance and ID
// are deliberately not part of it: the same statement imported twice, from
// any source, must not add rows.
type dupKey struct {
	date        string
	description string
	amount      string
	typ         model.TxnType
}

func keyOf(t model.Transaction) dupKey {
	return dupKey{
		date:        model.Day(t.Date).Format("2006-01-02"),
		description: t.Description,
		amount:      t.Amount.String(),
		typ:         t.Type,
	}
}

// Merge returns existing plus every candidate that does not duplicate an
// existing row, newest first. Rows on the same date keep their order, with
// existing rows ahead of new ones. Neither input is modified.
func Merge(existing, candidates []model.Transaction) MergeResult {
	seen := make(map[dupKey]bool, len(existing))
	for _, t := range existing {
		seen[keyOf(t)] = true
	}

	merged := make([]model.Transaction, 0, len(existing)+len(candidates))
	merged = append(merged, model.CloneAll(existing)...)

	res := MergeResult{}
	for _, c := range candidates {
		if seen[keyOf(c)] {
			res.Duplicates++
			continue
		}
		merged = append(merged, c.Clone())
		res.Added++
	}

	SortNewestFirst(merged)
	res.Ledger = merged
	return res
}

// SortNewestFirst sorts txns by date, newest first, keeping the relative
// order of same-day rows.
func SortNewestFirst(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return model.Day(txns[i].Date).After(model.Day(txns[j].Date))
	})
}
