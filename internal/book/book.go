package book

import (
	"errors"
	"strings"
	"time"

	"bookshelf/internal/platform/optional"
	"bookshelf/internal/platform/validation"
)

// ErrNotFound is returned when a book does not exist or belongs to someone else.
var ErrNotFound = errors.New("book not found")

// Book is one catalogue entry owned by a user.
type Book struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         *string   `json:"genre"`
	Pages         *int      `json:"pages"`
	ISBN          *string   `json:"isbn"`
	CoverImageURL *string   `json:"cover_image_url"`
	Synopsis      *string   `json:"synopsis"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input is the payload for creating a book.
type Input struct {
	Title         string  `json:"title" validate:"notblank,max=500"`
	Author        string  `json:"author" validate:"notblank,max=300"`
	Genre         *string `json:"genre,omitempty" validate:"omitnil,max=100"`
	Pages         *int    `json:"pages,omitempty" validate:"omitnil,gte=0"`
	ISBN          *string `json:"isbn,omitempty" validate:"omitnil,isbn"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitnil,url"`
	Synopsis      *string `json:"synopsis,omitempty"`
}

// Normalize trims text fields and turns empty optional strings into nulls.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = nullIfBlank(in.Genre)
	in.ISBN = nullIfBlank(in.ISBN)
	in.CoverImageURL = nullIfBlank(in.CoverImageURL)
	in.Synopsis = nullIfBlank(in.Synopsis)
	return in
}

func (in Input) Validate() error {
	return validation.Struct(in.Normalize())
}

// Patch is a partial update. Absent fields are left unchanged, null fields are cleared.
type Patch struct {
	Title         optional.Field[string] `json:"title,omitzero"`
	Author        optional.Field[string] `json:"author,omitzero"`
	Genre         optional.Field[string] `json:"genre,omitzero"`
	Pages         optional.Field[int]    `json:"pages,omitzero"`
	ISBN          optional.Field[string] `json:"isbn,omitzero"`
	CoverImageURL optional.Field[string] `json:"cover_image_url,omitzero"`
	Synopsis      optional.Field[string] `json:"synopsis,omitzero"`
}

func (p Patch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Author.IsSet() && !p.Genre.IsSet() && !p.Pages.IsSet() &&
		!p.ISBN.IsSet() && !p.CoverImageURL.IsSet() && !p.Synopsis.IsSet()
}

func (p Patch) Validate() error {
	var errs validation.Errors
	// title and author cannot be cleared
	if p.Title.IsSet() {
		v, _ := p.Title.Get()
		errs.Var("title", v, "notblank,max=500")
	}
	if p.Author.IsSet() {
		v, _ := p.Author.Get()
		errs.Var("author", v, "notblank,max=300")
	}
	if v, ok := p.Pages.Get(); ok {
		errs.Var("pages", v, "gte=0")
	}
	if v, ok := p.ISBN.Get(); ok && strings.TrimSpace(v) != "" {
		errs.Var("isbn", v, "isbn")
	}
	if v, ok := p.CoverImageURL.Get(); ok && strings.TrimSpace(v) != "" {
		errs.Var("cover_image_url", v, "url")
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
