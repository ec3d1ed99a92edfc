package merge

import "github.com/MimeLyc/term-catalog-merger/internal/catalog"

// Collection is an insertion-ordered set of terms keyed by the full
// (name, englishValue, frenchValue) triple.
type Collection struct {
	seen  map[catalog.Term]struct{}
	terms []catalog.Term
}

func NewCollection() *Collection {
	return &Collection{
		seen:  make(map[catalog.Term]struct{}),
		terms: make([]catalog.Term, 0),
	}
}

// Add appends term unless an identical triple is already present.
func (c *Collection) Add(term catalog.Term) bool {
	if _, ok := c.seen[term]; ok {
		return false
	}
	c.seen[term] = struct{}{}
	c.terms = append(c.terms, term)
	return true
}

// AddAll adds terms in order and returns how many were new.
func (c *Collection) AddAll(terms []catalog.Term) int {
	added := 0
	for _, term := range terms {
		if c.Add(term) {
			added++
		}
	}
	return added
}

func (c *Collection) Len() int {
	return len(c.terms)
}

// Terms returns a copy of the collected terms in first-seen order.
func (c *Collection) Terms() []catalog.Term {
	out := make([]catalog.Term, len(c.terms))
	copy(out, c.terms)
	return out
}
