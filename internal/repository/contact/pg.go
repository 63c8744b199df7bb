package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
	"github.com/kailas-cloud/agenda/internal/domain/search/query"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// pgConn is the consumer interface over *pgxpool.Pool (ISP).
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type columnKind int

const (
	kindText columnKind = iota
	kindBool
	kindFloat
	kindArray
	kindMicros
)

type column struct {
	name string
	kind columnKind
}

// pgColumns maps persisted field names to indexed columns. The full record
// lives in the doc column; these copies only serve WHERE and ORDER BY.
var pgColumns = map[string]column{
	domcontact.FieldOwnerID:    {"user_id", kindText},
	domcontact.FieldPublic:     {"is_public", kindBool},
	domcontact.FieldFavorite:   {"is_favorite", kindBool},
	domcontact.FieldCategoryID: {"category_id", kindText},
	domcontact.FieldSlug:       {"slug", kindText},
	domcontact.FieldEmail:      {"email", kindText},
	domcontact.FieldLatitude:   {"latitude", kindFloat},
	domcontact.FieldLongitude:  {"longitude", kindFloat},
	domcontact.FieldKeywords:   {"search_keywords", kindArray},
	domcontact.FieldCreatedAt:  {"created_at", kindMicros},
}

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
	id              text PRIMARY KEY,
	user_id         text NOT NULL,
	is_public       boolean NOT NULL DEFAULT false,
	is_favorite     boolean NOT NULL DEFAULT false,
	category_id     text,
	slug            text,
	email           text NOT NULL,
	latitude        double precision,
	longitude       double precision,
	search_keywords text[] NOT NULL DEFAULT '{}',
	created_at      bigint NOT NULL,
	updated_at      bigint NOT NULL,
	doc             jsonb NOT NULL
)`,
	`ALTER TABLE contacts ADD COLUMN IF NOT EXISTS is_favorite boolean NOT NULL DEFAULT false`,
	`CREATE INDEX IF NOT EXISTS contacts_public_created_idx ON contacts (is_public, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS contacts_owner_created_idx ON contacts (user_id, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS contacts_keywords_idx ON contacts USING gin (search_keywords)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS contacts_slug_uidx ON contacts (slug) WHERE slug IS NOT NULL`,
}

// PGRepo stores contacts in PostgreSQL. Pagination is keyset on
// (created_at, id), so equal creation times never skip or repeat a row.
type PGRepo struct {
	conn pgConn
}

// NewPG creates a PostgreSQL contact repository.
func NewPG(conn pgConn) *PGRepo {
	return &PGRepo{conn: conn}
}

// EnsureSchema creates the contacts table and its indexes.
func (r *PGRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := r.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Save upserts c.
func (r *PGRepo) Save(ctx context.Context, c *domcontact.Contact) error {
	fields := domcontact.ToFields(c)
	doc, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal contact %s: %w", c.ID(), err)
	}

	var lat, lon *float64
	if loc, ok := c.Location(); ok {
		la, lo := loc.Latitude(), loc.Longitude()
		lat, lon = &la, &lo
	}
	keywords := domcontact.Keywords(c)
	if keywords == nil {
		keywords = []string{}
	}

	_, err = r.conn.Exec(ctx, `
INSERT INTO contacts (id, user_id, is_public, is_favorite, category_id, slug, email, latitude, longitude,
	search_keywords, created_at, updated_at, doc)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	user_id = EXCLUDED.user_id, is_public = EXCLUDED.is_public, is_favorite = EXCLUDED.is_favorite,
	category_id = EXCLUDED.category_id,
	slug = EXCLUDED.slug, email = EXCLUDED.email, latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude, search_keywords = EXCLUDED.search_keywords,
	updated_at = EXCLUDED.updated_at, doc = EXCLUDED.doc`,
		c.ID(), c.OwnerID(), c.IsPublic(), c.IsFavorite(), nullable(c.CategoryID()), nullable(c.Slug()), c.Email(),
		lat, lon, keywords, c.CreatedAt().UnixMicro(), c.UpdatedAt().UnixMicro(), string(doc),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("contact %s: %w", c.ID(), domain.ErrAlreadyExists)
		}
		return fmt.Errorf("upsert contact %s: %w", c.ID(), err)
	}
	return nil
}

// Get returns a contact by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (domcontact.Contact, error) {
	snap, err := r.Snapshot(ctx, id)
	if err != nil {
		return domcontact.Contact{}, err
	}
	return domcontact.FromFields(id, snap.Fields)
}

// GetBySlug returns the public contact published under slug.
func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (domcontact.Contact, error) {
	q := query.New().
		WhereEquals(domcontact.FieldPublic, "true").
		WhereEquals(domcontact.FieldSlug, slug).
		Limit(1)
	snaps, err := r.Execute(ctx, q)
	if err != nil {
		return domcontact.Contact{}, err
	}
	if len(snaps) == 0 {
		return domcontact.Contact{}, domain.ErrNotFound
	}
	return domcontact.FromFields(snaps[0].ID, snaps[0].Fields)
}

// Delete removes a contact.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsSlug reports whether another contact than excludeID holds slug.
func (r *PGRepo) ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists slug: %w", err)
	}
	return exists, nil
}

// ExistsEmail reports whether ownerID has another contact than excludeID with email.
func (r *PGRepo) ExistsEmail(ctx context.Context, ownerID, email, excludeID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE user_id = $1 AND email = $2 AND id <> $3)`,
		ownerID, email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists email: %w", err)
	}
	return exists, nil
}

// Execute runs q as a single SELECT.
func (r *PGRepo) Execute(ctx context.Context, q query.Query) ([]query.Snapshot, error) {
	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var snaps []query.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read contacts: %w", err)
	}
	return snaps, nil
}

// Snapshot returns the document with id positioned in createdAt order.
func (r *PGRepo) Snapshot(ctx context.Context, id string) (query.Snapshot, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, created_at, doc FROM contacts WHERE id = $1`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return query.Snapshot{}, domain.ErrNotFound
		}
		return query.Snapshot{}, err
	}
	return snap, nil
}

func scanSnapshot(row pgx.Row) (query.Snapshot, error) {
	var (
		id        string
		createdAt int64
		doc       []byte
	)
	if err := row.Scan(&id, &createdAt, &doc); err != nil {
		return query.Snapshot{}, fmt.Errorf("scan contact: %w", err)
	}
	fields := make(map[string]string)
	if err := json.Unmarshal(doc, &fields); err != nil {
		return query.Snapshot{}, fmt.Errorf("decode contact %s: %w", id, err)
	}
	return query.Snapshot{
		ID:     id,
		Fields: fields,
		Cursor: query.Cursor{ID: id, Value: float64(createdAt)},
	}, nil
}

// buildSelect renders q into SQL. Conditions are AND-ed; a cursor becomes a
// row comparison on (order column, id).
func buildSelect(q query.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for _, c := range q.Conditions() {
		col, ok := pgColumns[c.Key()]
		if !ok {
			return "", nil, fmt.Errorf("%w: field %s is not filterable", domain.ErrInvalidArgument, c.Key())
		}
		clause, err := renderCondition(col, c, arg)
		if err != nil {
			return "", nil, err
		}
		where = append(where, clause)
	}

	var order string
	if f := q.OrderField(); f != "" {
		col, ok := pgColumns[f]
		if !ok {
			return "", nil, fmt.Errorf("%w: field %s is not sortable", domain.ErrInvalidArgument, f)
		}
		dir := q.Direction().String()
		order = fmt.Sprintf(" ORDER BY %s %s, id %s", col.name, dir, dir)

		if after := q.After(); after != nil {
			op := "<"
			if q.Direction() == query.Asc {
				op = ">"
			}
			where = append(where, fmt.Sprintf("(%s, id) %s (%s, %s)",
				col.name, op, arg(columnValue(col, after.Value)), arg(after.ID)))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT id, created_at, doc FROM contacts")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(order)
	b.WriteString(" LIMIT ")
	b.WriteString(arg(q.PageSize()))
	return b.String(), args, nil
}

func renderCondition(col column, c filter.Condition, arg func(any) string) (string, error) {
	switch {
	case c.IsContains():
		if col.kind != kindArray {
			return "", fmt.Errorf("%w: field %s is not multi-valued", domain.ErrInvalidArgument, c.Key())
		}
		return arg(c.Match()) + " = ANY(" + col.name + ")", nil
	case c.IsMatch():
		v, err := matchValue(col, c.Match())
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, c.Key(), err)
		}
		return col.name + " = " + arg(v), nil
	case c.IsRange():
		r := c.Range()
		var parts []string
		if r.GT() != nil {
			parts = append(parts, col.name+" > "+arg(columnValue(col, *r.GT())))
		}
		if r.GTE() != nil {
			parts = append(parts, col.name+" >= "+arg(columnValue(col, *r.GTE())))
		}
		if r.LT() != nil {
			parts = append(parts, col.name+" < "+arg(columnValue(col, *r.LT())))
		}
		if r.LTE() != nil {
			parts = append(parts, col.name+" <= "+arg(columnValue(col, *r.LTE())))
		}
		return strings.Join(parts, " AND "), nil
	}
	return "", fmt.Errorf("%w: empty condition on %s", domain.ErrInvalidArgument, c.Key())
}

func matchValue(col column, raw string) (any, error) {
	switch col.kind {
	case kindBool:
		return strconv.ParseBool(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindMicros:
		return strconv.ParseInt(raw, 10, 64)
	default:
		return raw, nil
	}
}

func columnValue(col column, v float64) any {
	if col.kind == kindMicros {
		return int64(v)
	}
	return v
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
