package cli

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/cover"
	"bookshelf/internal/reading"
)

const (
	testToken    = "tok-1"
	testPassword = "Secret123!"
)

// fakeAPI serves the subset of the bookshelf API the CLI uses, backed by
// in-memory slices.
type fakeAPI struct {
	mu       sync.Mutex
	seq      int
	requests int
	books    []book.Book
	readings []reading.Reading
	covers   map[string][]byte
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{covers: map[string][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("POST /auth/register", f.register)
	mux.Handle("GET /me", f.authed(f.me))
	mux.Handle("GET /api/books", f.authed(f.listBooks))
	mux.Handle("POST /api/books", f.authed(f.createBook))
	mux.Handle("PATCH /api/books/{id}", f.authed(f.updateBook))
	mux.Handle("DELETE /api/books/{id}", f.authed(f.deleteBook))
	mux.Handle("GET /api/readings", f.authed(f.listReadings))
	mux.Handle("POST /api/readings", f.authed(f.createReading))
	mux.Handle("PATCH /api/readings/{id}", f.authed(f.updateReading))
	mux.Handle("DELETE /api/readings/{id}", f.authed(f.deleteReading))
	mux.Handle("POST /api/upload", f.authed(f.upload))
	mux.Handle("DELETE /api/upload", f.authed(f.deleteUpload))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeAPI) Books() []book.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]book.Book(nil), f.books...)
}

func (f *fakeAPI) Readings() []reading.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reading.Reading(nil), f.readings...)
}

func (f *fakeAPI) Covers() map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.covers)
}

func (f *fakeAPI) nextID(prefix string) string {
	f.seq++
	return prefix + strconv.Itoa(f.seq)
}

func ok(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": map[string]string{"code": code, "message": msg}})
}

func (f *fakeAPI) authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		h(w, r)
	})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password != testPassword {
		fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}
	ok(w, http.StatusOK, map[string]any{"access_token": testToken, "token_type": "Bearer", "expires_in": 3600, "user_id": "u1"})
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Username string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	ok(w, http.StatusCreated, map[string]any{"id": "u1", "email": in.Email, "username": in.Username})
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, map[string]any{"id": "u1", "email": "reader@example.com", "username": "reader"})
}

func (f *fakeAPI) listBooks(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, f.books)
}

func (f *fakeAPI) createBook(w http.ResponseWriter, r *http.Request) {
	var in book.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	now := time.Now()
	b := book.Book{
		ID: f.nextID("b"), UserID: "u1", Title: in.Title, Author: in.Author, Genre: in.Genre, Pages: in.Pages,
		ISBN: in.ISBN, CoverImageURL: in.CoverImageURL, Synopsis: in.Synopsis, CreatedAt: now, UpdatedAt: now,
	}
	f.books = append([]book.Book{b}, f.books...)
	ok(w, http.StatusCreated, b)
}

func (f *fakeAPI) updateBook(w http.ResponseWriter, r *http.Request) {
	var p book.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	for i, b := range f.books {
		if b.ID == r.PathValue("id") {
			f.books[i] = applyBookPatch(p, b)
			ok(w, http.StatusOK, f.books[i])
			return
		}
	}
	fail(w, http.StatusNotFound, "NOT_FOUND", "Book not found")
}

func (f *fakeAPI) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var books []book.Book
	for _, b := range f.books {
		if b.ID != id {
			books = append(books, b)
		}
	}
	if len(books) == len(f.books) {
		fail(w, http.StatusNotFound, "NOT_FOUND", "Book not found")
		return
	}
	f.books = books
	var readings []reading.Reading
	for _, rd := range f.readings {
		if rd.BookID != id {
			readings = append(readings, rd)
		}
	}
	f.readings = readings
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) listReadings(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, f.readings)
}

func (f *fakeAPI) createReading(w http.ResponseWriter, r *http.Request) {
	var in reading.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	found := false
	for _, b := range f.books {
		found = found || b.ID == in.BookID
	}
	if !found {
		fail(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
		return
	}
	rd := reading.Reading{
		ID: f.nextID("r"), UserID: "u1", BookID: in.BookID, Status: in.Status, StartDate: in.StartDate,
		EndDate: in.EndDate, Notes: in.Notes, Rating: in.Rating, PagesRead: in.PagesRead,
	}
	f.readings = append([]reading.Reading{rd}, f.readings...)
	ok(w, http.StatusCreated, rd)
}

func (f *fakeAPI) updateReading(w http.ResponseWriter, r *http.Request) {
	var p reading.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	for i, rd := range f.readings {
		if rd.ID == r.PathValue("id") {
			f.readings[i] = applyReadingPatch(p, rd)
			ok(w, http.StatusOK, f.readings[i])
			return
		}
	}
	fail(w, http.StatusNotFound, "NOT_FOUND", "Reading not found")
}

func (f *fakeAPI) deleteReading(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var readings []reading.Reading
	for _, rd := range f.readings {
		if rd.ID != id {
			readings = append(readings, rd)
		}
	}
	f.readings = readings
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, http.StatusBadRequest, "BAD_REQUEST", "No file provided")
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)
	key := "u1/" + f.nextID("k") + "_" + header.Filename
	f.covers[key] = data
	ok(w, http.StatusOK, cover.Asset{Path: key, URL: "http://covers.test/" + key})
}

func (f *fakeAPI) deleteUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("path")
	if _, found := f.covers[key]; !found {
		fail(w, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}
	delete(f.covers, key)
	w.WriteHeader(http.StatusNoContent)
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
