package reading

import (
	"errors"
	"strings"
	"time"

	"bookshelf/internal/platform/optional"
	"bookshelf/internal/platform/validation"
)

const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// DateLayout is the wire and storage format of start_date and end_date.
const DateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("reading not found")
	ErrBookNotFound = errors.New("linked book not found")
)

// BookSummary is the slice of the linked book returned with each reading.
type BookSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  *int   `json:"pages"`
}

// Reading is one session-log entry against a book.
type Reading struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	BookID    string       `json:"book_id"`
	Status    string       `json:"status"`
	StartDate string       `json:"start_date"`
	EndDate   *string      `json:"end_date"`
	Notes     *string      `json:"notes"`
	Rating    *int         `json:"rating"`
	PagesRead *int         `json:"pages_read"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Book      *BookSummary `json:"books,omitempty"`
}

type Input struct {
	BookID    string  `json:"book_id" validate:"notblank"`
	Status    string  `json:"status" validate:"oneof=in-progress completed"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Notes     *string `json:"notes,omitempty"`
	Rating    *int    `json:"rating,omitempty" validate:"omitnil,min=1,max=5"`
	PagesRead *int    `json:"pages_read,omitempty" validate:"omitnil,gte=0"`
}

// Normalize trims text, defaults an empty status to in-progress and turns
// empty optional strings and a zero rating or page count into nulls.
func (in Input) Normalize() Input {
	in.BookID = strings.TrimSpace(in.BookID)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = StatusInProgress
	}
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = nullIfBlank(in.EndDate)
	in.Notes = nullIfBlank(in.Notes)
	in.Rating = nullIfZero(in.Rating)
	in.PagesRead = nullIfZero(in.PagesRead)
	return in
}

func (in Input) Validate() error {
	return validation.Struct(in.Normalize())
}

// Patch is a partial update. book_id, status and start_date cannot be cleared.
type Patch struct {
	BookID    optional.Field[string] `json:"book_id,omitzero"`
	Status    optional.Field[string] `json:"status,omitzero"`
	StartDate optional.Field[string] `json:"start_date,omitzero"`
	EndDate   optional.Field[string] `json:"end_date,omitzero"`
	Notes     optional.Field[string] `json:"notes,omitzero"`
	Rating    optional.Field[int]    `json:"rating,omitzero"`
	PagesRead optional.Field[int]    `json:"pages_read,omitzero"`
}

func (p Patch) IsEmpty() bool {
	return !p.BookID.IsSet() && !p.Status.IsSet() && !p.StartDate.IsSet() && !p.EndDate.IsSet() &&
		!p.Notes.IsSet() && !p.Rating.IsSet() && !p.PagesRead.IsSet()
}

func (p Patch) Validate() error {
	var errs validation.Errors
	if p.BookID.IsSet() {
		v, _ := p.BookID.Get()
		errs.Var("book_id", v, "notblank")
	}
	if p.Status.IsSet() {
		v, _ := p.Status.Get()
		errs.Var("status", v, "required,oneof=in-progress completed")
	}
	if p.StartDate.IsSet() {
		v, _ := p.StartDate.Get()
		errs.Var("start_date", v, "required,datetime=2006-01-02")
	}
	if v, ok := p.EndDate.Get(); ok && strings.TrimSpace(v) != "" {
		errs.Var("end_date", v, "datetime=2006-01-02")
	}
	if v, ok := p.Rating.Get(); ok {
		errs.Var("rating", v, "min=1,max=5")
	}
	if v, ok := p.PagesRead.Get(); ok {
		errs.Var("pages_read", v, "gte=0")
	}
	return errs.Err()
}

func nullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nullIfZero(n *int) *int {
	if n == nil || *n == 0 {
		return nil
	}
	return n
}
