package contact

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
	"github.com/kailas-cloud/agenda/internal/domain/search/query"
)

func TestBuildSelect_PublicSearch(t *testing.T) {
	q := query.New().
		WhereEquals(domcontact.FieldPublic, "true").
		WhereEquals(domcontact.FieldCategoryID, "plumbers").
		WhereContains(domcontact.FieldKeywords, "maria").
		WhereRange(domcontact.FieldLatitude, filter.Between(-24, -23)).
		OrderBy(domcontact.FieldCreatedAt, query.Desc).
		Limit(90)

	sql, args, err := buildSelect(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT id, created_at, doc FROM contacts WHERE is_public = $1 AND category_id = $2" +
		" AND $3 = ANY(search_keywords) AND latitude >= $4 AND latitude <= $5" +
		" ORDER BY created_at DESC, id DESC LIMIT $6"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	wantArgs := []any{true, "plumbers", "maria", -24.0, -23.0, 90}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildSelect_OwnerFavorites(t *testing.T) {
	q := query.New().
		WhereEquals(domcontact.FieldOwnerID, "u-1").
		WhereEquals(domcontact.FieldFavorite, "true").
		OrderBy(domcontact.FieldCreatedAt, query.Desc).
		Limit(20)

	sql, args, err := buildSelect(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT id, created_at, doc FROM contacts WHERE user_id = $1 AND is_favorite = $2" +
		" ORDER BY created_at DESC, id DESC LIMIT $3"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if wantArgs := []any{"u-1", true, 20}; !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildSelect_KeysetCursor(t *testing.T) {
	q := query.New().
		WhereEquals(domcontact.FieldOwnerID, "u-1").
		OrderBy(domcontact.FieldCreatedAt, query.Desc).
		Limit(10).
		StartAfter(query.Cursor{ID: "c-5", Value: 1700000000000500})

	sql, args, err := buildSelect(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT id, created_at, doc FROM contacts WHERE user_id = $1 AND (created_at, id) < ($2, $3)" +
		" ORDER BY created_at DESC, id DESC LIMIT $4"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	wantArgs := []any{"u-1", int64(1700000000000500), "c-5", 10}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildSelect_AscendingCursor(t *testing.T) {
	q := query.New().
		OrderBy(domcontact.FieldCreatedAt, query.Asc).
		Limit(1).
		StartAfter(query.Cursor{ID: "c-1", Value: 5})

	sql, _, err := buildSelect(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT id, created_at, doc FROM contacts WHERE (created_at, id) > ($1, $2) ORDER BY created_at ASC, id ASC LIMIT $3"
	if sql != want {
		t.Errorf("sql = %s", sql)
	}
}

func TestBuildSelect_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    query.Query
	}{
		{"no limit", query.New()},
		{"unknown field", query.New().WhereEquals("notes", "x").Limit(1)},
		{"contains on scalar", query.New().WhereContains(domcontact.FieldSlug, "x").Limit(1)},
		{"bad bool", query.New().WhereEquals(domcontact.FieldPublic, "maybe").Limit(1)},
		{"unsortable", query.New().OrderBy("notes", query.Asc).Limit(1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := buildSelect(tc.q)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Error("empty string must map to NULL")
	}
	if p := nullable("x"); p == nil || *p != "x" {
		t.Error("non-empty string must be kept")
	}
}
