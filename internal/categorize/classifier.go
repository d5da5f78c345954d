package categorize

import (
	"sort"

	"github.com/jbrukh/bayesian"

	"github.com/tally-dev/tally/internal/model"
)

// Classifier is a naive Bayes model of description terms to categories.
type Classifier struct {
	cl      *bayesian.Classifier
	classes []bayesian.Class
	vocab   map[string]bool
}

// Train learns from the categorized transactions in history. It returns nil
// when history holds fewer than two distinct categories.
func Train(history []model.Transaction) *Classifier {
	cats := make(map[string]bool)
	for _, t := range history {
		if t.Category == "" || t.Category == model.Uncategorized {
			continue
		}
		cats[t.Category] = true
	}
	if len(cats) < 2 {
		return nil
	}

	names := make([]string, 0, len(cats))
	for c := range cats {
		names = append(names, c)
	}
	sort.Strings(names)
	classes := make([]bayesian.Class, len(names))
	for i, n := range names {
		classes[i] = bayesian.Class(n)
	}

	c := &Classifier{
		cl:      bayesian.NewClassifier(classes...),
		classes: classes,
		vocab:   make(map[string]bool),
	}
	for _, t := range history {
		if !cats[t.Category] {
			continue
		}
		doc := terms(t.Description)
		if len(doc) == 0 {
			continue
		}
		for _, w := range doc {
			c.vocab[w] = true
		}
		c.cl.Learn(doc, bayesian.Class(t.Category))
	}
	return c
}

// Classify returns the most probable category for description when the
// model has seen at least one of its terms, the winner is unique, and its
// posterior reaches floor.
func (c *Classifier) Classify(description string, floor float64) (string, bool) {
	doc := terms(description)
	known := false
	for _, w := range doc {
		if c.vocab[w] {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}

	scores, inx, strict := c.cl.ProbScores(doc)
	if !strict || scores[inx] < floor {
		return "", false
	}
	return string(c.classes[inx]), true
}
