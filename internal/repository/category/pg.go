package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
)

// pgConn is the consumer interface over *pgxpool.Pool (ISP).
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgSchema = `CREATE TABLE IF NOT EXISTS categories (
	id          text PRIMARY KEY,
	user_id     text NOT NULL,
	name        text NOT NULL,
	slug        text NOT NULL,
	description text NOT NULL DEFAULT '',
	color       text NOT NULL DEFAULT '',
	created_at  bigint NOT NULL,
	updated_at  bigint NOT NULL
)`

const pgColumns = `id, user_id, name, slug, description, color, created_at, updated_at`

// PGRepo stores categories in PostgreSQL.
type PGRepo struct {
	conn pgConn
}

// NewPG creates a PostgreSQL category repository.
func NewPG(conn pgConn) *PGRepo {
	return &PGRepo{conn: conn}
}

// EnsureSchema creates the categories table.
func (r *PGRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("ensure categories schema: %w", err)
	}
	return nil
}

// Save upserts a category.
func (r *PGRepo) Save(ctx context.Context, c *domcat.Category) error {
	_, err := r.conn.Exec(ctx, `
INSERT INTO categories (`+pgColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, description = EXCLUDED.description,
	color = EXCLUDED.color, updated_at = EXCLUDED.updated_at`,
		c.ID(), c.OwnerID(), c.Name(), c.Slug(), c.Description(), c.Color(),
		c.CreatedAt().UnixMicro(), c.UpdatedAt().UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID(), err)
	}
	return nil
}

// Get retrieves a category by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (domcat.Category, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+pgColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domcat.Category{}, domain.ErrNotFound
	}
	return c, err
}

// List returns the owner's categories sorted by name.
func (r *PGRepo) List(ctx context.Context, ownerID string) ([]domcat.Category, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+pgColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []domcat.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return out, nil
}

// Delete removes a category.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (domcat.Category, error) {
	var (
		id, owner, name, slug, desc, color string
		created, updated                   int64
	)
	if err := row.Scan(&id, &owner, &name, &slug, &desc, &color, &created, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcat.Category{}, err
		}
		return domcat.Category{}, fmt.Errorf("scan category: %w", err)
	}
	return domcat.Reconstruct(id, owner, name, slug, desc, color,
		time.UnixMicro(created).UTC(), time.UnixMicro(updated).UTC()), nil
}
