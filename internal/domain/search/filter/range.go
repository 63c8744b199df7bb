package filter

import "errors"

// Range bounds a numeric field. Each side is open, inclusive or exclusive.
type Range struct {
	gt, gte, lt, lte *float64
}

// NewRangeFilter builds a range from optional bounds. At least one bound is
// required and each side takes either its exclusive or inclusive form.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	switch {
	case gt == nil && gte == nil && lt == nil && lte == nil:
		return Range{}, errors.New("at least one range boundary is required")
	case gt != nil && gte != nil:
		return Range{}, errors.New("cannot combine gt and gte")
	case lt != nil && lte != nil:
		return Range{}, errors.New("cannot combine lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between is the inclusive range [lo, hi].
func Between(lo, hi float64) Range { return Range{gte: &lo, lte: &hi} }

// Below is the exclusive upper bound (-inf, v).
func Below(v float64) Range { return Range{lt: &v} }

// Above is the exclusive lower bound (v, +inf).
func Above(v float64) Range { return Range{gt: &v} }

// GT is the exclusive lower bound, if any.
func (r Range) GT() *float64 { return r.gt }

// GTE is the inclusive lower bound, if any.
func (r Range) GTE() *float64 { return r.gte }

// LT is the exclusive upper bound, if any.
func (r Range) LT() *float64 { return r.lt }

// LTE is the inclusive upper bound, if any.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within r.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && !(v > *r.gt),
		r.gte != nil && !(v >= *r.gte),
		r.lt != nil && !(v < *r.lt),
		r.lte != nil && !(v <= *r.lte):
		return false
	}
	return true
}
