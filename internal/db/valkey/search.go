package valkey

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/agenda/internal/db"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
)

// defaultTagSeparator matches the FT.CREATE default for TAG fields.
const defaultTagSeparator = ","

// Search lists documents of an index via SCAN + HGETALL, applying filters,
// sort and LIMIT in process.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	def, ok := s.definition(q.IndexName)
	if !ok {
		return nil, &db.Error{Op: db.OpSearch, Key: q.IndexName, Err: db.ErrIndexNotFound}
	}

	keys, err := s.scanIndex(ctx, def)
	if err != nil {
		return nil, err
	}
	hashes, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, err
	}

	entries := make([]db.SearchEntry, 0, len(keys))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		if !matchExpression(def, q.Filters, fields) {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: keys[i], Fields: fields})
	}

	sortEntries(entries, q.SortBy, q.SortDesc)

	total := len(entries)
	if q.Offset >= total {
		return &db.SearchResult{Total: total}, nil
	}
	end := min(q.Offset+q.Limit, total)
	page := entries[q.Offset:end]

	if len(q.ReturnFields) > 0 {
		for i := range page {
			page[i].Fields = project(page[i].Fields, q.ReturnFields)
		}
	}

	return &db.SearchResult{Total: total, Entries: page}, nil
}

func (s *Store) scanIndex(ctx context.Context, def *db.IndexDefinition) ([]string, error) {
	prefixes := def.Prefixes
	if len(prefixes) == 0 {
		prefixes = []string{indexToKeyPrefix(def.Name)}
	}

	var keys []string
	for _, p := range prefixes {
		found, err := s.Scan(ctx, p+"*")
		if err != nil {
			return nil, fmt.Errorf("scan for list: %w", err)
		}
		keys = append(keys, found...)
	}
	return keys, nil
}

// indexToKeyPrefix converts index name to a SCAN prefix.
// "agenda:contacts:idx" -> "agenda:contacts:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}

// --- Filter evaluation ---

func matchExpression(def *db.IndexDefinition, expr filter.Expression, fields map[string]string) bool {
	for _, c := range expr.Must() {
		if !matchCondition(def, c, fields) {
			return false
		}
	}
	if should := expr.Should(); len(should) > 0 {
		hit := false
		for _, c := range should {
			if matchCondition(def, c, fields) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, c := range expr.MustNot() {
		if matchCondition(def, c, fields) {
			return false
		}
	}
	return true
}

func matchCondition(def *db.IndexDefinition, c filter.Condition, fields map[string]string) bool {
	raw, ok := fields[c.Key()]
	if !ok {
		return false
	}

	switch {
	case c.IsRange():
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		return c.Range().Contains(v)
	case c.IsMatch(), c.IsContains():
		f, _ := def.Field(c.Key())
		sep := f.TagSeparator
		if sep == "" {
			sep = defaultTagSeparator
		}
		want := strings.TrimSpace(c.Match())
		for _, tag := range strings.Split(raw, sep) {
			tag = strings.TrimSpace(tag)
			if f.TagCaseSensitive && tag == want {
				return true
			}
			if !f.TagCaseSensitive && strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}

// --- Ordering ---

func sortEntries(entries []db.SearchEntry, field string, desc bool) {
	if field == "" {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		return
	}

	values := make(map[string]float64, len(entries))
	for _, e := range entries {
		v, err := strconv.ParseFloat(e.Fields[field], 64)
		if err != nil {
			v = math.Inf(-1) // missing sort values go last in DESC, first in ASC
		}
		values[e.Key] = v
	}

	sort.Slice(entries, func(i, j int) bool {
		vi, vj := values[entries[i].Key], values[entries[j].Key]
		if vi != vj {
			if desc {
				return vi > vj
			}
			return vi < vj
		}
		return entries[i].Key < entries[j].Key
	})
}

func project(fields map[string]string, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := fields[n]; ok {
			out[n] = v
		}
	}
	return out
}
