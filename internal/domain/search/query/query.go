// Package query is the store-neutral document query model: composable filters,
// a single ordering, a page size and an exclusive resume cursor.
package query

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
)

// Direction is the sort direction of the order field.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Cursor identifies the last document of a previous read. Execution resumes
// strictly after it in the query's order. Value is the document's order field.
type Cursor struct {
	ID    string
	Value float64
}

// IsZero reports whether the cursor is unset.
func (c Cursor) IsZero() bool { return c.ID == "" }

// Snapshot is one document returned by an execution.
type Snapshot struct {
	ID     string
	Fields map[string]string
	Cursor Cursor
}

// Query is an immutable document query. Every builder method returns a copy.
type Query struct {
	conditions []filter.Condition
	orderField string
	direction  Direction
	limit      int
	after      *Cursor
	err        error
}

// New returns an empty query.
func New() Query { return Query{} }

// WhereEquals adds an exact match on field.
func (q Query) WhereEquals(field, value string) Query {
	c, err := filter.NewMatch(field, value)
	return q.with(c, err)
}

// WhereContains adds a membership test on the multi-valued field.
func (q Query) WhereContains(field, value string) Query {
	c, err := filter.NewContains(field, value)
	return q.with(c, err)
}

// WhereRange adds a numeric range on field.
func (q Query) WhereRange(field string, r filter.Range) Query {
	c, err := filter.NewRange(field, r)
	return q.with(c, err)
}

// OrderBy sets the single order field.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.orderField = field
	q.direction = dir
	return q
}

// Limit sets the maximum number of documents per execution.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// StartAfter resumes after c. A zero cursor clears the resume point.
func (q Query) StartAfter(c Cursor) Query {
	if c.IsZero() {
		q.after = nil
		return q
	}
	q.after = &c
	return q
}

func (q Query) with(c filter.Condition, err error) Query {
	if err != nil {
		if q.err == nil {
			q.err = err
		}
		return q
	}
	conds := make([]filter.Condition, len(q.conditions), len(q.conditions)+1)
	copy(conds, q.conditions)
	q.conditions = append(conds, c)
	return q
}

// Validate reports the first builder error or an inconsistent query.
func (q Query) Validate() error {
	if q.err != nil {
		return fmt.Errorf("query: %w", q.err)
	}
	if q.limit <= 0 {
		return fmt.Errorf("query: limit must be positive, got %d", q.limit)
	}
	if q.after != nil && q.orderField == "" {
		return errors.New("query: start after requires an order field")
	}
	if len(q.conditions) > filter.MaxConditionsPerGroup {
		return fmt.Errorf("query: too many conditions (max %d)", filter.MaxConditionsPerGroup)
	}
	return nil
}

// Conditions returns the AND-ed filter conditions.
func (q Query) Conditions() []filter.Condition { return q.conditions }

// Expression returns the conditions as a must-only filter expression.
func (q Query) Expression() (filter.Expression, error) {
	return filter.NewExpression(q.conditions, nil, nil)
}

// OrderField returns the order field name, empty when unordered.
func (q Query) OrderField() string { return q.orderField }

// Direction returns the sort direction.
func (q Query) Direction() Direction { return q.direction }

// PageSize returns the limit.
func (q Query) PageSize() int { return q.limit }

// After returns the resume cursor, nil when reading from the start.
func (q Query) After() *Cursor { return q.after }
