package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/agenda/internal/db"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
)

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "agenda:contacts:idx", "@isPublic:{true}",
			"SORTBY", "createdAt", "DESC",
			"LIMIT", "0", "30",
			"DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("agenda:contacts:c2"),
			mock.RedisArray(mock.RedisString("name"), mock.RedisString("Bia"), mock.RedisString("createdAt"), mock.RedisString("200")),
			mock.RedisString("agenda:contacts:c1"),
			mock.RedisArray(mock.RedisString("name"), mock.RedisString("Ana"), mock.RedisString("createdAt"), mock.RedisString("100")),
		)))

	pub, _ := filter.NewMatch("isPublic", "true")
	expr, _ := filter.NewExpression([]filter.Condition{pub}, nil, nil)

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName: "agenda:contacts:idx",
		Filters:   expr,
		SortBy:    "createdAt",
		SortDesc:  true,
		Limit:     30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("total=%d entries=%d, want 2/2", res.Total, len(res.Entries))
	}
	if res.Entries[0].Key != "agenda:contacts:c2" || res.Entries[0].Fields["name"] != "Bia" {
		t.Errorf("unexpected first entry: %+v", res.Entries[0])
	}
}

func TestSearch_WildcardAndReturn(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "idx", "*",
			"RETURN", "1", "name",
			"SORTBY", "createdAt", "ASC",
			"LIMIT", "5", "10",
			"DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName:    "idx",
		SortBy:       "createdAt",
		Offset:       5,
		Limit:        10,
		ReturnFields: []string{"name"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{IndexName: "idx", Limit: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected *db.Error, got %T", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	tests := []struct {
		name string
		q    db.SearchQuery
	}{
		{"no index", db.SearchQuery{Limit: 1}},
		{"zero limit", db.SearchQuery{IndexName: "idx"}},
		{"negative offset", db.SearchQuery{IndexName: "idx", Limit: 1, Offset: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Search(context.Background(), &tc.q); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// --- query rendering ---

func TestBuildFilter_Empty(t *testing.T) {
	result := buildFilter(filter.Expression{})
	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestBuildFilter_MustTag(t *testing.T) {
	cond, _ := filter.NewMatch("categoryId", "plumbers")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)

	result := buildFilter(expr)
	if result != `@categoryId:{plumbers}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_MustNumeric(t *testing.T) {
	gte := -23.7
	lte := -23.5
	rng, _ := filter.NewRangeFilter(nil, &gte, nil, &lte)
	cond, _ := filter.NewRange("latitude", rng)
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)

	result := buildFilter(expr)
	if result != `@latitude:[-23.7 -23.5]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Should(t *testing.T) {
	cond1, _ := filter.NewMatch("categoryId", "cooks")
	cond2, _ := filter.NewMatch("categoryId", "maids")
	expr, _ := filter.NewExpression(nil, []filter.Condition{cond1, cond2}, nil)

	result := buildFilter(expr)
	if result != `(@categoryId:{cooks} | @categoryId:{maids})` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_MustNot(t *testing.T) {
	cond, _ := filter.NewMatch("isPublic", "false")
	expr, _ := filter.NewExpression(nil, nil, []filter.Condition{cond})

	result := buildFilter(expr)
	if result != `-@isPublic:{false}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Combined(t *testing.T) {
	mustCond, _ := filter.NewMatch("isPublic", "true")
	notCond, _ := filter.NewMatch("categoryId", "spam")
	expr, _ := filter.NewExpression([]filter.Condition{mustCond}, nil, []filter.Condition{notCond})

	result := buildFilter(expr)
	if result != `@isPublic:{true} -@categoryId:{spam}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Contains(t *testing.T) {
	cond, _ := filter.NewContains("searchKeywords", "maria silva")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)

	result := buildFilter(expr)
	if result != `@searchKeywords:{maria\ silva}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildNumericFilter_GTonly(t *testing.T) {
	rng := filter.Above(5)
	result := buildNumericFilter("createdAt", rng)
	if result != `@createdAt:[(5 +inf]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildNumericFilter_LTonly(t *testing.T) {
	rng := filter.Below(100)
	result := buildNumericFilter("createdAt", rng)
	if result != `@createdAt:[-inf (100]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildNumericFilter_MicrosecondPrecision(t *testing.T) {
	rng := filter.Below(1760000000123456)
	result := buildNumericFilter("createdAt", rng)
	if result != `@createdAt:[-inf (1760000000123456]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestTagEscaper(t *testing.T) {
	got := tagEscaper.Replace("a-b.c@d e")
	want := `a\-b\.c\@d\ e`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
