package reading

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

const (
	invalidTextRepresentation = "22P02"
	foreignKeyViolation       = "23503"
)

// readingColumns expects the reading aliased as r and its book as b.
const readingColumns = `r.id, r.user_id, r.book_id, r.status, r.start_date::text, r.end_date::text,
	r.notes, r.rating, r.pages_read, r.created_at, r.updated_at,
	b.id, b.title, b.author, b.pages`

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

func scanReading(row pgx.Row) (Reading, error) {
	var rd Reading
	var b BookSummary
	err := row.Scan(
		&rd.ID, &rd.UserID, &rd.BookID, &rd.Status, &rd.StartDate, &rd.EndDate,
		&rd.Notes, &rd.Rating, &rd.PagesRead, &rd.CreatedAt, &rd.UpdatedAt,
		&b.ID, &b.Title, &b.Author, &b.Pages,
	)
	if err != nil {
		return Reading{}, err
	}
	rd.Book = &b
	return rd, nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, userID string) ([]Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// Create inserts only when the linked book belongs to userID.
func (r *PostgresRepo) Create(ctx context.Context, userID string, in Input) (Reading, error) {
	query := `
		WITH r AS (
			INSERT INTO readings (user_id, book_id, status, start_date, end_date, notes, rating, pages_read)
			SELECT $1, bk.id, $3, $4::date, $5::date, $6, $7, $8
			FROM books bk
			WHERE bk.id = $2 AND bk.user_id = $1
			RETURNING *
		)
		SELECT ` + readingColumns + `
		FROM r
		JOIN books b ON b.id = r.book_id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rd, err := scanReading(r.db.QueryRow(timeoutCtx, query,
		userID, in.BookID, in.Status, in.StartDate, in.EndDate, in.Notes, in.Rating, in.PagesRead,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCode(err, invalidTextRepresentation) {
			return Reading{}, ErrBookNotFound
		}
		return Reading{}, err
	}
	return rd, nil
}

func (r *PostgresRepo) Update(ctx context.Context, userID, id string, p Patch) (Reading, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	if v, ok := p.BookID.Get(); ok {
		var owned bool
		err := r.db.QueryRow(timeoutCtx,
			`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND user_id = $2)`, strings.TrimSpace(v), userID,
		).Scan(&owned)
		if isCode(err, invalidTextRepresentation) || (err == nil && !owned) {
			return Reading{}, ErrBookNotFound
		}
		if err != nil {
			return Reading{}, err
		}
	}

	fields := []string{}
	args := []any{}
	argn := 1

	set := func(col string, v any, cast string) {
		fields = append(fields, fmt.Sprintf("%s = $%d%s", col, argn, cast))
		args = append(args, v)
		argn++
	}
	if v, ok := p.BookID.Get(); ok {
		set("book_id", strings.TrimSpace(v), "")
	}
	if v, ok := p.Status.Get(); ok {
		set("status", v, "")
	}
	if v, ok := p.StartDate.Get(); ok {
		set("start_date", v, "::date")
	}
	if p.EndDate.IsSet() {
		set("end_date", nullIfBlank(p.EndDate.Ptr()), "::date")
	}
	if p.Notes.IsSet() {
		set("notes", nullIfBlank(p.Notes.Ptr()), "")
	}
	if p.Rating.IsSet() {
		set("rating", p.Rating.Ptr(), "")
	}
	if p.PagesRead.IsSet() {
		set("pages_read", p.PagesRead.Ptr(), "")
	}
	fields = append(fields, "updated_at = now()")

	query := fmt.Sprintf(`
		WITH r AS (
			UPDATE readings SET %s
			WHERE id = $%d AND user_id = $%d
			RETURNING *
		)
		SELECT %s
		FROM r
		JOIN books b ON b.id = r.book_id`,
		strings.Join(fields, ", "), argn, argn+1, readingColumns)
	args = append(args, id, userID)

	rd, err := scanReading(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCode(err, invalidTextRepresentation) {
			return Reading{}, ErrNotFound
		}
		if isCode(err, foreignKeyViolation) {
			return Reading{}, ErrBookNotFound
		}
		return Reading{}, err
	}
	return rd, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM readings WHERE id = $1 AND user_id = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, userID)
	if err != nil {
		if isCode(err, invalidTextRepresentation) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
