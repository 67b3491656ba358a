package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Read(ctx context.Context, id string) (Book, error) {
	const query = `
		SELECT id, title, author, published_date, description, image_url,
		       created_at, updated_at
		FROM books
		WHERE id = $1
	`
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.Description, &b.ImageURL,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, b Book, partial bool) error {
	sql, args := buildUpdate(id, b, partial)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpdate renders the UPDATE statement for b. The id column is never
// written; a partial update skips empty fields.
func buildUpdate(id string, b Book, partial bool) (string, []any) {
	fields := []struct {
		column string
		value  string
	}{
		{"title", b.Title},
		{"author", b.Author},
		{"published_date", b.PublishedDate},
		{"description", b.Description},
		{"image_url", b.ImageURL},
	}

	sets := []string{}
	args := []any{}
	argn := 1
	for _, f := range fields {
		if partial && f.value == "" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, argn))
		args = append(args, f.value)
		argn++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d", strings.Join(sets, ", "), argn)
	return sql, args
}
