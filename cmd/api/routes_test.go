package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/cover"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/reading"
	"bookshelf/internal/testutil"
	"bookshelf/internal/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testUser   = "11111111-2222-3333-4444-555555555555"
	testBookID = "6f1c2b9e-2d5a-4a53-9b36-1f0c8f3a7d10"
)

type testServer struct {
	handler  http.Handler
	books    *book.MockRepository
	readings *reading.MockRepository
	users    *user.MockRepository
	covers   *cover.MemoryStore
	pingErr  error
}

func newTestServer(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := &config.Config{
		JWTSecret:      testSecret,
		AccessTokenTTL: time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 10,
		MaxUploadBytes: 1 << 12,
		StorageDriver:  config.StorageMemory,
		PublicBaseURL:  "http://localhost:8080",
	}

	ts := &testServer{
		books:    book.NewMockRepository(ctrl),
		readings: reading.NewMockRepository(ctrl),
		users:    user.NewMockRepository(ctrl),
		covers:   cover.NewMemoryStore(cfg.PublicBaseURL + "/covers"),
	}
	ts.handler = newRouter(t.Context(), deps{
		cfg:        cfg,
		logger:     zap.NewNop(),
		users:      user.NewService(ts.users),
		books:      book.NewService(ts.books),
		readings:   reading.NewService(ts.readings),
		uploader:   cover.NewUploader(ts.covers),
		coverFiles: ts.covers,
		ping:       func(context.Context) error { return ts.pingErr },
	})
	return ts
}

func (ts *testServer) do(r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func token() string {
	return testutil.GenerateTestToken(testSecret, testUser)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	res = ts.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	ts.pingErr = errors.New("db down")
	res = ts.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/api/books"},
		{http.MethodPost, "/api/books"},
		{http.MethodPatch, "/api/books/" + testBookID},
		{http.MethodDelete, "/api/readings/" + testBookID},
		{http.MethodPost, "/api/upload"},
		{http.MethodDelete, "/api/upload?path=x"},
	} {
		res := ts.do(testutil.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, res.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "UNAUTHORIZED", res.ErrorCode())
	}

	expired := testutil.GenerateExpiredToken(testSecret, testUser)
	res := ts.do(testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, expired))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRoutes_Books(t *testing.T) {
	ts := newTestServer(t)

	ts.books.EXPECT().ListByOwner(gomock.Any(), testUser).Return([]book.Book{{ID: testBookID, Title: "Dune"}}, nil)
	res := ts.do(testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, token()))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	ts.books.EXPECT().Update(gomock.Any(), testUser, testBookID, gomock.Any()).
		Return(book.Book{ID: testBookID, Title: "Dune Messiah"}, nil).Times(2)
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		res = ts.do(testutil.NewRequestWithAuth(method, "/api/books/"+testBookID, map[string]any{"title": "Dune Messiah"}, token()))
		assert.Equal(t, http.StatusOK, res.Code, method)
	}

	res = ts.do(testutil.NewRequestWithAuth(http.MethodPost, "/api/books/"+testBookID, nil, token()))
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestRoutes_BodyLimit(t *testing.T) {
	ts := newTestServer(t)

	big := map[string]any{"title": string(bytes.Repeat([]byte("a"), 2<<10)), "author": "x"}
	res := ts.do(testutil.NewRequestWithAuth(http.MethodPost, "/api/books", big, token()))
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
}

func TestRoutes_Readings(t *testing.T) {
	ts := newTestServer(t)

	ts.readings.EXPECT().Create(gomock.Any(), testUser, gomock.Any()).Return(reading.Reading{}, reading.ErrBookNotFound)
	res := ts.do(testutil.NewRequestWithAuth(http.MethodPost, "/api/readings",
		map[string]any{"book_id": testBookID, "start_date": "2025-01-01"}, token()))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "BOOK_NOT_FOUND", res.ErrorCode())
}

func multipartUpload(t *testing.T, name string, data []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token())
	return r
}

func TestRoutes_CoverUploadAndServe(t *testing.T) {
	ts := newTestServer(t)

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, multipartUpload(t, "cover.png", []byte("\x89PNG\r\n\x1a\nfake")))
	res := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, res.Code)

	data, ok := res.Body["data"].(map[string]any)
	require.True(t, ok)
	assetURL, _ := data["url"].(string)
	path, _ := data["path"].(string)
	assert.True(t, cover.OwnsPath(testUser, path))

	u, err := url.Parse(assetURL)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nfake"), body)

	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, multipartUpload(t, "big.png", bytes.Repeat([]byte("x"), 8<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	res = ts.do(testutil.NewRequestWithAuth(http.MethodDelete, "/api/upload?path="+url.QueryEscape(path), nil, token()))
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Zero(t, ts.covers.Len())
}

func TestRoutes_Auth(t *testing.T) {
	ts := newTestServer(t)

	ts.users.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").Return(user.User{}, user.ErrNotFound)
	ts.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
		u.ID = testUser
		return nil
	})
	res := ts.do(testutil.NewRequest(http.MethodPost, "/auth/register",
		map[string]string{"email": "reader@example.com", "username": "reader", "password": "Secret123!"}))
	require.Equal(t, http.StatusCreated, res.Code)

	hash, err := crypto.HashPassword("Secret123!")
	require.NoError(t, err)
	ts.users.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").
		Return(user.User{ID: testUser, Email: "reader@example.com", Password: hash}, nil)
	res = ts.do(testutil.NewRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "reader@example.com", "password": "Secret123!"}))
	require.Equal(t, http.StatusOK, res.Code)
	data, _ := res.Body["data"].(map[string]any)
	accessToken, _ := data["access_token"].(string)
	require.NotEmpty(t, accessToken)

	ts.users.EXPECT().GetByID(gomock.Any(), testUser).Return(user.User{ID: testUser, Email: "reader@example.com"}, nil)
	res = ts.do(testutil.NewRequestWithAuth(http.MethodGet, "/me", nil, accessToken))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@localhost:5432/db", redactDSN("postgres://user:pw@localhost:5432/db"))
	assert.Equal(t, "localhost", redactDSN("localhost"))
}
