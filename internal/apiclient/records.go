package apiclient

import (
	"context"
	"net/http"

	"bookshelf/internal/book"
	"bookshelf/internal/reading"
	"bookshelf/internal/recordstore"
)

var (
	_ recordstore.BookRemote    = (*Client)(nil)
	_ recordstore.ReadingRemote = (*Client)(nil)
)

func (c *Client) ListBooks(ctx context.Context) ([]book.Book, error) {
	var books []book.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books", nil, true, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) InsertBook(ctx context.Context, in book.Input) (book.Book, error) {
	var b book.Book
	if err := c.doJSON(ctx, http.MethodPost, "/api/books", in, true, &b); err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, p book.Patch) (book.Book, error) {
	var b book.Book
	if err := c.doJSON(ctx, http.MethodPatch, idPath("/api/books", id), p, true, &b); err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/api/books", id), nil, true, nil)
}

func (c *Client) ListReadings(ctx context.Context) ([]reading.Reading, error) {
	var readings []reading.Reading
	if err := c.doJSON(ctx, http.MethodGet, "/api/readings", nil, true, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

func (c *Client) InsertReading(ctx context.Context, in reading.Input) (reading.Reading, error) {
	var r reading.Reading
	if err := c.doJSON(ctx, http.MethodPost, "/api/readings", in, true, &r); err != nil {
		return reading.Reading{}, err
	}
	return r, nil
}

func (c *Client) UpdateReading(ctx context.Context, id string, p reading.Patch) (reading.Reading, error) {
	var r reading.Reading
	if err := c.doJSON(ctx, http.MethodPatch, idPath("/api/readings", id), p, true, &r); err != nil {
		return reading.Reading{}, err
	}
	return r, nil
}

func (c *Client) DeleteReading(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/api/readings", id), nil, true, nil)
}
