package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/agenda/internal/db"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
)

// Search runs q as FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	reply, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Key: q.IndexName, Err: err}
	}
	return parseSearchReply(reply)
}

func buildSearchArgs(q *db.SearchQuery) ([]string, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case q.Limit <= 0:
		return nil, errors.New("limit must be positive")
	case q.Offset < 0:
		return nil, errors.New("offset must not be negative")
	}

	query := buildFilter(q.Filters)
	if query == "" {
		query = "*"
	}
	args := []string{q.IndexName, query}

	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n))
		args = append(args, q.ReturnFields...)
	}
	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}
	return append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	), nil
}

// parseSearchReply decodes the RESP2 reply [total, key1, [f, v, ...], key2, ...].
// Malformed entries are skipped.
func parseSearchReply(reply []rueidis.RedisMessage) (*db.SearchResult, error) {
	res := &db.SearchResult{}
	if len(reply) == 0 {
		return res, nil
	}

	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res.Total = int(total)

	for rest := reply[1:]; len(rest) >= 2; rest = rest[2:] {
		key, err := rest[0].ToString()
		if err != nil {
			continue
		}
		pairs, err := rest[1].ToArray()
		if err != nil {
			continue
		}
		res.Entries = append(res.Entries, db.SearchEntry{Key: key, Fields: pairsToMap(pairs)})
	}
	return res, nil
}

func pairsToMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for ; len(pairs) >= 2; pairs = pairs[2:] {
		k, kerr := pairs[0].ToString()
		v, verr := pairs[1].ToString()
		if kerr == nil && verr == nil {
			m[k] = v
		}
	}
	return m
}

// buildFilter renders expr in the query syntax: must clauses are ANDed,
// should clauses form one OR group and must_not clauses are negated.
func buildFilter(expr filter.Expression) string {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
	}

	for _, c := range expr.Must() {
		sep()
		b.WriteString(buildCondition(c))
	}
	if should := expr.Should(); len(should) > 0 {
		sep()
		b.WriteByte('(')
		for i, c := range should {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(buildCondition(c))
		}
		b.WriteByte(')')
	}
	for _, c := range expr.MustNot() {
		sep()
		b.WriteByte('-')
		b.WriteString(buildCondition(c))
	}
	return b.String()
}

// buildCondition renders one clause. Membership on a separated TAG field
// uses the same syntax as an exact match.
func buildCondition(c filter.Condition) string {
	if c.IsRange() {
		return buildNumericFilter(c.Key(), *c.Range())
	}
	return "@" + c.Key() + ":{" + tagEscaper.Replace(c.Match()) + "}"
}

func buildNumericFilter(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"
	switch {
	case r.GT() != nil:
		lo = "(" + formatNumber(*r.GT())
	case r.GTE() != nil:
		lo = formatNumber(*r.GTE())
	}
	switch {
	case r.LT() != nil:
		hi = "(" + formatNumber(*r.LT())
	case r.LTE() != nil:
		hi = formatNumber(*r.LTE())
	}
	return "@" + key + ":[" + lo + " " + hi + "]"
}

// formatNumber avoids exponent notation so microsecond timestamps keep full precision.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tagPunctuation must be backslash-escaped inside a TAG query.
const tagPunctuation = ",.<>{}\"':;!@#$%^&*()-+=~/| "

var tagEscaper = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(tagPunctuation))
	for _, r := range tagPunctuation {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}()
