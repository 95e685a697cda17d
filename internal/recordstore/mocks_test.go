package recordstore

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/reading"

	"github.com/stretchr/testify/mock"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) ListBooks(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]book.Book)
	return books, args.Error(1)
}

func (m *mockRemote) InsertBook(ctx context.Context, in book.Input) (book.Book, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(book.Book), args.Error(1)
}

func (m *mockRemote) UpdateBook(ctx context.Context, id string, p book.Patch) (book.Book, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(book.Book), args.Error(1)
}

func (m *mockRemote) DeleteBook(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRemote) ListReadings(ctx context.Context) ([]reading.Reading, error) {
	args := m.Called(ctx)
	readings, _ := args.Get(0).([]reading.Reading)
	return readings, args.Error(1)
}

func (m *mockRemote) InsertReading(ctx context.Context, in reading.Input) (reading.Reading, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(reading.Reading), args.Error(1)
}

func (m *mockRemote) UpdateReading(ctx context.Context, id string, p reading.Patch) (reading.Reading, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(reading.Reading), args.Error(1)
}

func (m *mockRemote) DeleteReading(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// memoryRemote behaves like the API: ids are assigned on insert, patches
// touch only submitted fields and deleting a book deletes its readings.
type memoryRemote struct {
	mu       sync.Mutex
	seq      int
	books    []book.Book
	readings []reading.Reading
	lists    int
}

func (m *memoryRemote) nextID(prefix string) string {
	m.seq++
	return prefix + strconv.Itoa(m.seq)
}

func (m *memoryRemote) ListBooks(context.Context) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	return append([]book.Book(nil), m.books...), nil
}

func (m *memoryRemote) InsertBook(_ context.Context, in book.Input) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := book.Book{
		ID: m.nextID("b"), UserID: "u1", Title: in.Title, Author: in.Author, Genre: in.Genre,
		Pages: in.Pages, ISBN: in.ISBN, CoverImageURL: in.CoverImageURL, Synopsis: in.Synopsis,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.books = append([]book.Book{b}, m.books...)
	return b, nil
}

func (m *memoryRemote) UpdateBook(_ context.Context, id string, p book.Patch) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.books {
		if b.ID == id {
			m.books[i] = applyBookPatch(p, b)
			return m.books[i], nil
		}
	}
	return book.Book{}, &RemoteError{Status: 404, Message: "Book not found"}
}

func (m *memoryRemote) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.books[:0]
	for _, b := range m.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	m.books = kept
	keptR := m.readings[:0]
	for _, r := range m.readings {
		if r.BookID != id {
			keptR = append(keptR, r)
		}
	}
	m.readings = keptR
	return nil
}

func (m *memoryRemote) ListReadings(context.Context) ([]reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	return append([]reading.Reading(nil), m.readings...), nil
}

func (m *memoryRemote) InsertReading(_ context.Context, in reading.Input) (reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := reading.Reading{
		ID: m.nextID("r"), UserID: "u1", BookID: in.BookID, Status: in.Status, StartDate: in.StartDate,
		EndDate: in.EndDate, Notes: in.Notes, Rating: in.Rating, PagesRead: in.PagesRead,
	}
	m.readings = append([]reading.Reading{r}, m.readings...)
	return r, nil
}

func (m *memoryRemote) UpdateReading(_ context.Context, id string, p reading.Patch) (reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.readings {
		if r.ID == id {
			m.readings[i] = applyReadingPatch(p, r)
			return m.readings[i], nil
		}
	}
	return reading.Reading{}, &RemoteError{Status: 404, Message: "Reading not found"}
}

func (m *memoryRemote) DeleteReading(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.readings[:0]
	for _, r := range m.readings {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.readings = kept
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// applyBookPatch mirrors what the API does with a book patch.
func applyBookPatch(p book.Patch, b book.Book) book.Book {
	if v, ok := p.Title.Get(); ok {
		b.Title = strings.TrimSpace(v)
	}
	if v, ok := p.Author.Get(); ok {
		b.Author = strings.TrimSpace(v)
	}
	p.Genre.Apply(&b.Genre)
	p.Pages.Apply(&b.Pages)
	p.ISBN.Apply(&b.ISBN)
	p.CoverImageURL.Apply(&b.CoverImageURL)
	p.Synopsis.Apply(&b.Synopsis)
	return b
}

func applyReadingPatch(p reading.Patch, r reading.Reading) reading.Reading {
	if v, ok := p.BookID.Get(); ok {
		r.BookID = v
	}
	if v, ok := p.Status.Get(); ok {
		r.Status = v
	}
	if v, ok := p.StartDate.Get(); ok {
		r.StartDate = v
	}
	p.EndDate.Apply(&r.EndDate)
	p.Notes.Apply(&r.Notes)
	p.Rating.Apply(&r.Rating)
	p.PagesRead.Apply(&r.PagesRead)
	return r
}
