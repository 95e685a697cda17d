// Package recordstore keeps a local, deduplicated view of the user's books and
// readings and routes every write through the remote store, refreshing the
// affected snapshots once a write succeeds.
package recordstore

import (
	"context"
	"sync"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/reading"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// BookRemote is the remote books collection, scoped to the identity in ctx.
type BookRemote interface {
	ListBooks(ctx context.Context) ([]book.Book, error)
	InsertBook(ctx context.Context, in book.Input) (book.Book, error)
	UpdateBook(ctx context.Context, id string, p book.Patch) (book.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// ReadingRemote is the remote readings collection, scoped to the identity in ctx.
type ReadingRemote interface {
	ListReadings(ctx context.Context) ([]reading.Reading, error)
	InsertReading(ctx context.Context, in reading.Input) (reading.Reading, error)
	UpdateReading(ctx context.Context, id string, p reading.Patch) (reading.Reading, error)
	DeleteReading(ctx context.Context, id string) error
}

type options struct {
	logger         *zap.Logger
	dedupeInterval time.Duration
	fetchTimeout   time.Duration
	now            func() time.Time
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDedupeInterval sets how long a completed fetch is reused by Refresh.
func WithDedupeInterval(d time.Duration) Option {
	return func(o *options) { o.dedupeInterval = d }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type Client struct {
	Books    *Collection[book.Book]
	Readings *Collection[reading.Reading]

	books    BookRemote
	readings ReadingRemote
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func New(books BookRemote, readings ReadingRemote, opts ...Option) *Client {
	o := options{
		logger:         zap.NewNop(),
		dedupeInterval: DefaultDedupeInterval,
		fetchTimeout:   DefaultFetchTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	group := &singleflight.Group{}
	return &Client{
		Books:    newCollection("books", books.ListBooks, group, o),
		Readings: newCollection("readings", readings.ListReadings, group, o),
		books:    books,
		readings: readings,
		logger:   o.logger,
	}
}

// Close stops the client. Fetches still in flight finish but their results
// are discarded, and further calls fail with ErrClosed.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Books.close()
	c.Readings.close()
}

func (c *Client) begin(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return requireIdentity(ctx)
}

func (c *Client) CreateBook(ctx context.Context, in book.Input) (book.Book, error) {
	if err := c.begin(ctx); err != nil {
		return book.Book{}, err
	}
	if err := in.Validate(); err != nil {
		return book.Book{}, newValidationError(err)
	}

	b, err := c.books.InsertBook(ctx, in.Normalize())
	if err != nil {
		return book.Book{}, asRemote(err)
	}
	c.revalidate(ctx, true, false)
	return b, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, p book.Patch) (book.Book, error) {
	if err := c.begin(ctx); err != nil {
		return book.Book{}, err
	}
	if err := p.Validate(); err != nil {
		return book.Book{}, newValidationError(err)
	}

	b, err := c.books.UpdateBook(ctx, id, p)
	if err != nil {
		return book.Book{}, asRemote(err)
	}
	c.revalidate(ctx, true, false)
	return b, nil
}

// DeleteBook removes a book. The remote deletes its readings too, so both
// snapshots are refreshed.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	if err := c.begin(ctx); err != nil {
		return err
	}
	if err := c.books.DeleteBook(ctx, id); err != nil {
		return asRemote(err)
	}
	c.revalidate(ctx, true, true)
	return nil
}

func (c *Client) CreateReading(ctx context.Context, in reading.Input) (reading.Reading, error) {
	if err := c.begin(ctx); err != nil {
		return reading.Reading{}, err
	}
	if err := in.Validate(); err != nil {
		return reading.Reading{}, newValidationError(err)
	}

	r, err := c.readings.InsertReading(ctx, in.Normalize())
	if err != nil {
		return reading.Reading{}, asRemote(err)
	}
	c.revalidate(ctx, false, true)
	return r, nil
}

func (c *Client) UpdateReading(ctx context.Context, id string, p reading.Patch) (reading.Reading, error) {
	if err := c.begin(ctx); err != nil {
		return reading.Reading{}, err
	}
	if err := p.Validate(); err != nil {
		return reading.Reading{}, newValidationError(err)
	}

	r, err := c.readings.UpdateReading(ctx, id, p)
	if err != nil {
		return reading.Reading{}, asRemote(err)
	}
	c.revalidate(ctx, false, true)
	return r, nil
}

func (c *Client) DeleteReading(ctx context.Context, id string) error {
	if err := c.begin(ctx); err != nil {
		return err
	}
	if err := c.readings.DeleteReading(ctx, id); err != nil {
		return asRemote(err)
	}
	c.revalidate(ctx, false, true)
	return nil
}

// revalidate refreshes the touched snapshots after a successful write. A
// failed refresh leaves the old snapshot in place and is only logged.
func (c *Client) revalidate(ctx context.Context, books, readings bool) {
	var wg sync.WaitGroup
	if books {
		wg.Go(func() {
			if _, err := c.Books.Revalidate(ctx); err != nil {
				c.logger.Warn("refresh after write failed", zap.String("collection", "books"), zap.Error(err))
			}
		})
	}
	if readings {
		wg.Go(func() {
			if _, err := c.Readings.Revalidate(ctx); err != nil {
				c.logger.Warn("refresh after write failed", zap.String("collection", "readings"), zap.Error(err))
			}
		})
	}
	wg.Wait()
}
