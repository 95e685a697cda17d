package recordstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookshelf/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authed(t *testing.T) context.Context {
	return WithIdentity(t.Context(), Identity{UserID: "u1", Token: "tok"})
}

func newTestClient(t *testing.T, remote *mockRemote, opts ...Option) (*Client, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New(remote, remote, append([]Option{withClock(clock.Now)}, opts...)...)
	t.Cleanup(c.Close)
	return c, clock
}

func TestCollection_ConcurrentListSharesOneFetch(t *testing.T) {
	remote := &mockRemote{}
	release := make(chan struct{})
	remote.On("ListBooks", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]book.Book{{ID: "b1", Title: "Dune"}}, nil).
		Once()

	c, _ := newTestClient(t, remote)
	ctx := authed(t)

	const callers = 8
	results := make([][]book.Book, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Go(func() {
			results[i], errs[i] = c.Books.List(ctx)
		})
	}
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, []book.Book{{ID: "b1", Title: "Dune"}}, results[i])
	}
	remote.AssertNumberOfCalls(t, "ListBooks", 1)
}

func TestCollection_RefreshDedupesWithinInterval(t *testing.T) {
	remote := &mockRemote{}
	remote.On("ListBooks", mock.Anything).Return([]book.Book{{ID: "b1"}}, nil)

	c, clock := newTestClient(t, remote, WithDedupeInterval(5*time.Second))
	ctx := authed(t)

	_, err := c.Books.Refresh(ctx)
	require.NoError(t, err)
	clock.Advance(4 * time.Second)
	_, err = c.Books.Refresh(ctx)
	require.NoError(t, err)
	remote.AssertNumberOfCalls(t, "ListBooks", 1)

	clock.Advance(2 * time.Second)
	_, err = c.Books.Refresh(ctx)
	require.NoError(t, err)
	remote.AssertNumberOfCalls(t, "ListBooks", 2)
}

func TestCollection_ListReturnsCachedSnapshot(t *testing.T) {
	remote := &mockRemote{}
	remote.On("ListBooks", mock.Anything).Return([]book.Book(nil), nil).Once()

	c, clock := newTestClient(t, remote)
	ctx := authed(t)

	_, ok := c.Books.Snapshot()
	assert.False(t, ok)

	got, err := c.Books.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	clock.Advance(time.Hour)
	_, err = c.Books.List(ctx)
	require.NoError(t, err)
	remote.AssertNumberOfCalls(t, "ListBooks", 1)
}

func TestCollection_RevalidateDoesNotJoinOlderFetch(t *testing.T) {
	remote := &mockRemote{}
	started := make(chan struct{})
	release := make(chan struct{})
	remote.On("ListBooks", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]book.Book{{ID: "b1", Title: "before write"}}, nil).
		Once()
	remote.On("ListBooks", mock.Anything).
		Return([]book.Book{{ID: "b1", Title: "after write"}}, nil).
		Once()

	c, _ := newTestClient(t, remote)
	ctx := authed(t)

	var (
		wg       sync.WaitGroup
		stale    []book.Book
		staleErr error
	)
	wg.Go(func() {
		stale, staleErr = c.Books.Refresh(ctx)
	})
	<-started

	fresh, err := c.Books.Revalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "after write", fresh[0].Title)

	close(release)
	wg.Wait()
	require.NoError(t, staleErr)
	assert.Equal(t, "after write", stale[0].Title)

	snap, ok := c.Books.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "after write", snap[0].Title)
	remote.AssertExpectations(t)
}

func TestCollection_CallerCancelDoesNotFailOthers(t *testing.T) {
	remote := &mockRemote{}
	started := make(chan struct{})
	release := make(chan struct{})
	remote.On("ListBooks", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]book.Book{{ID: "b1"}}, nil).
		Once()

	c, _ := newTestClient(t, remote)
	ctx := authed(t)
	cancelCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	var cancelErr, otherErr error
	var other []book.Book
	wg.Go(func() {
		_, cancelErr = c.Books.Refresh(cancelCtx)
	})
	<-started
	wg.Go(func() {
		other, otherErr = c.Books.Refresh(ctx)
	})

	cancel()
	close(release)
	wg.Wait()

	assert.ErrorIs(t, cancelErr, context.Canceled)
	require.NoError(t, otherErr)
	assert.Equal(t, []book.Book{{ID: "b1"}}, other)
	remote.AssertNumberOfCalls(t, "ListBooks", 1)
}

func TestCollection_CloseDiscardsLateResult(t *testing.T) {
	remote := &mockRemote{}
	started := make(chan struct{})
	release := make(chan struct{})
	remote.On("ListBooks", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]book.Book{{ID: "b1"}}, nil).
		Once()

	c, _ := newTestClient(t, remote)
	ctx := authed(t)

	var wg sync.WaitGroup
	var err error
	wg.Go(func() {
		_, err = c.Books.Refresh(ctx)
	})
	<-started
	c.Close()
	close(release)
	wg.Wait()

	assert.ErrorIs(t, err, ErrClosed)
	_, ok := c.Books.Snapshot()
	assert.False(t, ok)

	_, err = c.Books.Refresh(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCollection_FetchError(t *testing.T) {
	remote := &mockRemote{}
	remote.On("ListBooks", mock.Anything).Return(nil, &RemoteError{Status: 503, Message: "unavailable"}).Once()
	remote.On("ListBooks", mock.Anything).Return(nil, context.DeadlineExceeded).Once()

	c, _ := newTestClient(t, remote)
	ctx := authed(t)

	_, err := c.Books.Refresh(ctx)
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 503, re.Status)

	_, err = c.Books.Refresh(ctx)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, re.Status)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok := c.Books.Snapshot()
	assert.False(t, ok)
}

func TestCollection_RequiresIdentity(t *testing.T) {
	remote := &mockRemote{}
	c, _ := newTestClient(t, remote)

	_, err := c.Books.List(t.Context())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = c.Readings.Refresh(WithIdentity(t.Context(), Identity{UserID: "u1"}))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	remote.AssertNotCalled(t, "ListBooks", mock.Anything)
	remote.AssertNotCalled(t, "ListReadings", mock.Anything)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	remote := &mockRemote{}
	remote.On("ListBooks", mock.Anything).Return([]book.Book{{ID: "b1", Title: "Dune"}}, nil).Once()

	c, _ := newTestClient(t, remote)
	got, err := c.Books.List(authed(t))
	require.NoError(t, err)
	got[0].Title = "changed"

	snap, _ := c.Books.Snapshot()
	assert.Equal(t, "Dune", snap[0].Title)
}
