// Package categorize proposes categories for uncategorized transactions from
// the categories of similar transactions already in the ledger.
package categorize

import (
	"sort"

	"github.com/tally-dev/tally/internal/model"
)

// Budget bounds how hard the Suggester looks and how sure it must be.
type Budget struct {
	// MaxCandidates limits the search to the N most recent categorized
	// transactions. Zero means no limit.
	MaxCandidates int
	// MinSimilarity is the token-overlap floor for a non-exact match.
	MinSimilarity float64
	// Learned enables the naive Bayes fallback when no description is
	// similar enough.
	Learned bool
	// LearnedFloor is the posterior probability the fallback must reach.
	LearnedFloor float64
}

const (
	defaultMinSimilarity = 0.5
	defaultLearnedFloor  = 0.9
)

// DefaultBudget returns the budget used when none is configured.
func DefaultBudget() Budget {
	return Budget{
		MaxCandidates: 500,
		MinSimilarity: defaultMinSimilarity,
		LearnedFloor:  defaultLearnedFloor,
	}
}

// Suggester finds a category for a description from prior transactions.
type Suggester struct {
	budget Budget
}

// NewSuggester creates a Suggester. Zero floors fall back to the defaults.
func NewSuggester(b Budget) *Suggester {
	if b.MinSimilarity <= 0 {
		b.MinSimilarity = defaultMinSimilarity
	}
	if b.LearnedFloor <= 0 {
		b.LearnedFloor = defaultLearnedFloor
	}
	return &Suggester{budget: b}
}

// Budget returns the effective budget.
func (s *Suggester) Budget() Budget { return s.budget }

// Suggest returns the category of the best match for description among
// existing, or false when nothing is similar enough.
//
// An exact description match (ignoring case, punctuation and spacing) always
// wins. Otherwise the highest token overlap wins. Ties go to the most recent
// transaction.
func (s *Suggester) Suggest(description string, existing []model.Transaction) (string, bool) {
	target := normalize(description)
	if target == "" {
		return "", false
	}

	history := s.candidates(existing)
	if len(history) == 0 {
		return "", false
	}

	for _, t := range history {
		if normalize(t.Description) == target {
			return t.Category, true
		}
	}

	want := termSet(description)
	best := 0.0
	var bestCat string
	for _, t := range history {
		score := similarity(want, termSet(t.Description))
		if score > best {
			best = score
			bestCat = t.Category
		}
	}
	if best > 0 && best >= s.budget.MinSimilarity {
		return bestCat, true
	}

	if s.budget.Learned {
		if cl := Train(history); cl != nil {
			return cl.Classify(description, s.budget.LearnedFloor)
		}
	}
	return "", false
}

// candidates returns the categorized transactions newest first, ledger order
// breaking date ties, truncated to the budget.
func (s *Suggester) candidates(existing []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range existing {
		if t.Category == "" || t.Category == model.Uncategorized {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if s.budget.MaxCandidates > 0 && len(out) > s.budget.MaxCandidates {
		out = out[:s.budget.MaxCandidates]
	}
	return out
}
