// Package view derives what the dashboard shows from the current book and
// reading snapshots. Everything here is a pure function of its arguments.
package view

import (
	"slices"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/reading"
)

// Selector values that disable the genre or status filter.
const (
	AllGenres   = "all"
	AllStatuses = "all"
)

type Filter struct {
	Search string
	Genre  string
	Status string
}

// FilterBooks keeps, in order, the books whose title or author contains
// f.Search case-insensitively and whose genre equals f.Genre.
func FilterBooks(books []book.Book, f Filter) []book.Book {
	needle := strings.ToLower(f.Search)
	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		if !matchesText(b, needle) {
			continue
		}
		if !allSelected(f.Genre, AllGenres) && (b.Genre == nil || *b.Genre != f.Genre) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FilterReadings keeps, in order, the readings whose book is in books,
// matches f.Search and whose status equals f.Status. Readings pointing at a
// missing book are always dropped.
func FilterReadings(readings []reading.Reading, books []book.Book, f Filter) []reading.Reading {
	byID := index(books)
	needle := strings.ToLower(f.Search)
	out := make([]reading.Reading, 0, len(readings))
	for _, r := range readings {
		b, ok := byID[r.BookID]
		if !ok || !matchesText(b, needle) {
			continue
		}
		if !allSelected(f.Status, AllStatuses) && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

type Stats struct {
	TotalBooks    int     `json:"total_books"`
	Completed     int     `json:"completed"`
	InProgress    int     `json:"in_progress"`
	AverageRating float64 `json:"average_rating"`
	RatedCount    int     `json:"rated_count"`
	PagesRead     int     `json:"pages_read"`
}

// ComputeStats aggregates the snapshots. Unrated readings do not count
// toward the average, and orphaned readings count toward nothing.
func ComputeStats(books []book.Book, readings []reading.Reading) Stats {
	byID := index(books)
	s := Stats{TotalBooks: len(books)}

	ratingSum := 0
	for _, r := range readings {
		b, ok := byID[r.BookID]
		if !ok {
			continue
		}
		switch r.Status {
		case reading.StatusCompleted:
			s.Completed++
			if b.Pages != nil {
				s.PagesRead += *b.Pages
			}
		case reading.StatusInProgress:
			s.InProgress++
		}
		if r.Rating != nil {
			ratingSum += *r.Rating
			s.RatedCount++
		}
	}
	if s.RatedCount > 0 {
		s.AverageRating = float64(ratingSum) / float64(s.RatedCount)
	}
	return s
}

// Genres returns the distinct non-empty genres, sorted.
func Genres(books []book.Book) []string {
	genres := make([]string, 0)
	for _, b := range books {
		if b.Genre == nil || strings.TrimSpace(*b.Genre) == "" {
			continue
		}
		genres = append(genres, *b.Genre)
	}
	slices.Sort(genres)
	return slices.Compact(genres)
}

// CurrentReading returns the first in-progress reading of a book. Several may
// exist; the first in snapshot order wins.
func CurrentReading(readings []reading.Reading, bookID string) (reading.Reading, bool) {
	for _, r := range readings {
		if r.BookID == bookID && r.Status == reading.StatusInProgress {
			return r, true
		}
	}
	return reading.Reading{}, false
}

// Selection is the transient UI state the dashboard is computed with.
type Selection struct {
	Search    string
	Genre     string
	Status    string
	EditingID string
}

type Dashboard struct {
	Stats    Stats
	Books    []book.Book
	Readings []reading.Reading
	Genres   []string

	// BookTitles resolves a reading's book for display.
	BookTitles map[string]string

	EditingBook    *book.Book
	EditingReading *reading.Reading
}

// Build recomputes the whole dashboard from the snapshots.
func Build(books []book.Book, readings []reading.Reading, sel Selection) Dashboard {
	f := Filter{Search: sel.Search, Genre: sel.Genre, Status: sel.Status}
	d := Dashboard{
		Stats:      ComputeStats(books, readings),
		Books:      FilterBooks(books, f),
		Readings:   FilterReadings(readings, books, f),
		Genres:     Genres(books),
		BookTitles: make(map[string]string, len(books)),
	}
	for _, b := range books {
		d.BookTitles[b.ID] = b.Title
	}

	if sel.EditingID != "" {
		if i := slices.IndexFunc(books, func(b book.Book) bool { return b.ID == sel.EditingID }); i >= 0 {
			b := books[i]
			d.EditingBook = &b
		} else if i := slices.IndexFunc(readings, func(r reading.Reading) bool { return r.ID == sel.EditingID }); i >= 0 {
			r := readings[i]
			d.EditingReading = &r
		}
	}
	return d
}

func matchesText(b book.Book, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Author), needle)
}

func allSelected(v, all string) bool {
	return v == "" || v == all
}

func index(books []book.Book) map[string]book.Book {
	m := make(map[string]book.Book, len(books))
	for _, b := range books {
		m[b.ID] = b
	}
	return m
}
