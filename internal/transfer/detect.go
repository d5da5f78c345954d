// Package transfer finds pairs of ledger transactions that are the two sides
// of one internal movement of money and marks them as transfers.
package transfer

import (
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

// Detector pairs transfer legs across sources and across household members.
type Detector struct {
	ids id.Generator
}

// New creates a Detector that mints transfer IDs from ids.
func New(ids id.Generator) *Detector {
	return &Detector{ids: ids}
}

// Result is the output of Detect.
type Result struct {
	Ledger []model.Transaction
	Pairs  []model.TransferPair
}

type match struct {
	a, b int // ledger positions, a from the earlier bucket
}

// Detect returns a copy of snapshot with every newly found transfer stamped
// on both legs, and the pairs it found.
//
// Matching is greedy: buckets and transactions are scanned in snapshot order
// and the first unclaimed candidate wins. Transactions that are already
// paired, or whose transfer flags a user has overridden, are never claimed.
// The input is not modified.
func (d *Detector) Detect(snapshot []model.Transaction) Result {
	ledger := model.CloneAll(snapshot)
	claimed := make([]bool, len(ledger))
	for i, t := range ledger {
		claimed[i] = t.IsPaired() || t.IsOverridden()
	}

	all := make([]int, len(ledger))
	for i := range all {
		all[i] = i
	}
	sources := partition(ledger, all, func(t model.Transaction) string { return t.Metadata.SourceKey() })

	var matches []match
	matches = append(matches, crossMatch(ledger, sources, claimed)...)
	for _, src := range sources {
		users := partition(ledger, src.idx, func(t model.Transaction) string { return t.User })
		matches = append(matches, crossMatch(ledger, users, claimed)...)
	}

	pairs := make([]model.TransferPair, 0, len(matches))
	for _, m := range matches {
		pairs = append(pairs, d.stamp(ledger, m))
	}
	return Result{Ledger: ledger, Pairs: pairs}
}

func (d *Detector) stamp(ledger []model.Transaction, m match) model.TransferPair {
	a, b := &ledger[m.a], &ledger[m.b]

	kind := model.TransferUser
	if a.User == b.User {
		kind = model.TransferSelf
	}
	transferID := d.ids.NewID()
	for _, leg := range []*model.Transaction{a, b} {
		leg.Transfer = &model.TransferInfo{
			IsTransfer:               true,
			TransferID:               transferID,
			TransferType:             kind,
			ExcludedFromCalculations: true,
		}
	}

	credit, debit := *a, *b
	if a.Type == model.TypeExpense {
		credit, debit = *b, *a
	}
	return model.TransferPair{
		Credit:     credit.Clone(),
		Debit:      debit.Clone(),
		TransferID: transferID,
		Confidence: Confidence(*a, *b),
	}
}

// bucket is a group of ledger positions in snapshot order.
type bucket struct {
	key string
	idx []int
}

// partition groups positions by key, buckets ordered by first appearance.
func partition(ledger []model.Transaction, positions []int, key func(model.Transaction) string) []bucket {
	var out []bucket
	at := make(map[string]int)
	for _, p := range positions {
		k := key(ledger[p])
		i, ok := at[k]
		if !ok {
			i = len(out)
			at[k] = i
			out = append(out, bucket{key: k})
		}
		out[i].idx = append(out[i].idx, p)
	}
	return out
}

// crossMatch runs the greedy scan over every pair of distinct buckets.
func crossMatch(ledger []model.Transaction, buckets []bucket, claimed []bool) []match {
	var out []match
	for i := 0; i < len(buckets); i++ {
		for j := i + 1; j < len(buckets); j++ {
			out = append(out, matchBuckets(ledger, buckets[i], buckets[j], claimed)...)
		}
	}
	return out
}

type amountKey struct {
	amount string
	typ    model.TxnType
}

// matchBuckets pairs each unclaimed transaction of a with the first unclaimed
// candidate of b. Candidates in b are indexed by amount and type; each index
// list keeps b's order, so the first hit is the same one a linear scan of b
// would find.
func matchBuckets(ledger []model.Transaction, a, b bucket, claimed []bool) []match {
	index := make(map[amountKey][]int)
	for _, p := range b.idx {
		if claimed[p] {
			continue
		}
		t := ledger[p]
		k := amountKey{t.Amount.String(), t.Type}
		index[k] = append(index[k], p)
	}

	var out []match
	for _, p := range a.idx {
		if claimed[p] {
			continue
		}
		t1 := ledger[p]
		if !t1.Type.Valid() {
			continue
		}
		k := amountKey{t1.Amount.String(), t1.Type.Opposite()}
		list := index[k]
		for len(list) > 0 && claimed[list[0]] {
			list = list[1:]
		}
		index[k] = list

		for _, q := range list {
			if claimed[q] || !IsTransferPair(t1, ledger[q]) {
				continue
			}
			claimed[p], claimed[q] = true, true
			out = append(out, match{a: p, b: q})
			break
		}
	}
	return out
}
