// Package filter models the boolean pre-filter a query hands to the store:
// groups of tag, membership and numeric range conditions.
package filter

import "fmt"

// MaxConditionsPerGroup caps each of the must, should and must_not groups.
const MaxConditionsPerGroup = 32

// Expression combines conditions: every must holds, at least one should
// holds (when any are given) and no must_not holds.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates group sizes.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	groups := []struct {
		name  string
		conds []Condition
	}{
		{"must", must},
		{"should", should},
		{"must_not", mustNot},
	}
	for _, g := range groups {
		if len(g.conds) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many %s conditions: %d (max %d)",
				g.name, len(g.conds), MaxConditionsPerGroup)
		}
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// Should returns the alternatives of which one has to hold.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the excluding conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether e matches everything.
func (e Expression) IsEmpty() bool {
	return len(e.must)+len(e.should)+len(e.mustNot) == 0
}
