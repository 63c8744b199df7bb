package filter

import "errors"

var errNoKey = errors.New("filter key is required")

type kind uint8

const (
	kindMatch kind = iota + 1
	kindContains
	kindRange
)

// Condition is one clause on a single field.
type Condition struct {
	kind  kind
	key   string
	value string
	rng   *Range
}

// NewMatch requires field key to equal value.
func NewMatch(key, value string) (Condition, error) {
	return newValueCondition(kindMatch, key, value)
}

// NewContains requires the multi-valued field key to hold value among its elements.
func NewContains(key, value string) (Condition, error) {
	return newValueCondition(kindContains, key, value)
}

func newValueCondition(k kind, key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, errNoKey
	}
	if value == "" {
		return Condition{}, errors.New("match value is required for key " + key)
	}
	return Condition{kind: k, key: key, value: value}, nil
}

// NewRange requires the numeric field key to lie within r.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, errNoKey
	}
	return Condition{kind: kindRange, key: key, rng: &r}, nil
}

// Key is the field the condition applies to.
func (c Condition) Key() string { return c.key }

// Match is the compared value of a match or membership condition.
func (c Condition) Match() string { return c.value }

// Range is the bounds of a range condition, nil otherwise.
func (c Condition) Range() *Range { return c.rng }

// IsMatch reports an exact match.
func (c Condition) IsMatch() bool { return c.kind == kindMatch }

// IsContains reports a membership test.
func (c Condition) IsContains() bool { return c.kind == kindContains }

// IsRange reports a numeric range.
func (c Condition) IsRange() bool { return c.kind == kindRange }
