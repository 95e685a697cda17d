package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, user_id, title, author, genre, pages, isbn, cover_image_url, synopsis, created_at, updated_at`

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

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.Genre, &b.Pages, &b.ISBN,
		&b.CoverImageURL, &b.Synopsis, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, userID string) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE user_id = $1 ORDER BY created_at DESC, id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, userID string, in Input) (Book, error) {
	query := `
		INSERT INTO books (user_id, title, author, genre, pages, isbn, cover_image_url, synopsis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query,
		userID, in.Title, in.Author, in.Genre, in.Pages, in.ISBN, in.CoverImageURL, in.Synopsis,
	))
}

func (r *PostgresRepo) Update(ctx context.Context, userID, id string, p Patch) (Book, error) {
	fields := []string{}
	args := []any{}
	argn := 1

	set := func(col string, v any) {
		fields = append(fields, fmt.Sprintf("%s = $%d", col, argn))
		args = append(args, v)
		argn++
	}
	if v, ok := p.Title.Get(); ok {
		set("title", strings.TrimSpace(v))
	}
	if v, ok := p.Author.Get(); ok {
		set("author", strings.TrimSpace(v))
	}
	if p.Genre.IsSet() {
		set("genre", nullIfBlank(p.Genre.Ptr()))
	}
	if p.Pages.IsSet() {
		set("pages", p.Pages.Ptr())
	}
	if p.ISBN.IsSet() {
		set("isbn", nullIfBlank(p.ISBN.Ptr()))
	}
	if p.CoverImageURL.IsSet() {
		set("cover_image_url", nullIfBlank(p.CoverImageURL.Ptr()))
	}
	if p.Synopsis.IsSet() {
		set("synopsis", nullIfBlank(p.Synopsis.Ptr()))
	}
	fields = append(fields, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(fields, ", "), argn, argn+1, bookColumns)
	args = append(args, id, userID)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		return Book{}, mapNotFound(err)
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM books WHERE id = $1 AND user_id = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, userID)
	if err != nil {
		return mapNotFound(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapNotFound also covers ids that are not valid UUIDs.
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return ErrNotFound
	}
	return err
}
