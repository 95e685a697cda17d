package reading

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/optional"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

const (
	testUser      = "user-1"
	testReadingID = "0b7f5c1e-8f0e-4d7a-a3f4-5a2c9d6e1b22"
	testBookID    = "6f1c2b9e-2d5a-4a53-9b36-1f0c8f3a7d10"
)

func authed(r *http.Request) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), testUser))
}

func newHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(mockRepo)), mockRepo
}

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newHandler(t)
	mockRepo.EXPECT().ListByOwner(gomock.Any(), testUser).Return([]Reading{{
		ID:     testReadingID,
		BookID: testBookID,
		Status: StatusInProgress,
		Book:   &BookSummary{ID: testBookID, Title: "Dune", Author: "Frank Herbert"},
	}}, nil)

	w := httptest.NewRecorder()
	handler.List(w, authed(httptest.NewRequest(http.MethodGet, "/api/readings", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"books":{"id":"`+testBookID+`","title":"Dune"`)
}

func TestHTTPHandler_Create(t *testing.T) {
	handler, mockRepo := newHandler(t)

	t.Run("success", func(t *testing.T) {
		want := Input{BookID: testBookID, Status: StatusInProgress, StartDate: "2024-03-01"}
		mockRepo.EXPECT().Create(gomock.Any(), testUser, want).Return(Reading{ID: testReadingID}, nil)

		body := `{"book_id":"` + testBookID + `","start_date":"2024-03-01","notes":""}`
		w := httptest.NewRecorder()
		handler.Create(w, authed(httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(body))))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("book not owned", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), testUser, gomock.Any()).Return(Reading{}, ErrBookNotFound)

		body := `{"book_id":"` + testBookID + `","status":"completed","start_date":"2024-03-01"}`
		w := httptest.NewRecorder()
		handler.Create(w, authed(httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(body))))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "BOOK_NOT_FOUND")
	})

	t.Run("zero rating and pages stored as null", func(t *testing.T) {
		want := Input{BookID: testBookID, Status: StatusCompleted, StartDate: "2024-03-01"}
		mockRepo.EXPECT().Create(gomock.Any(), testUser, want).Return(Reading{ID: testReadingID}, nil)

		body := `{"book_id":"` + testBookID + `","status":"completed","start_date":"2024-03-01","rating":0,"pages_read":0}`
		w := httptest.NewRecorder()
		handler.Create(w, authed(httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(body))))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		body := `{"book_id":"` + testBookID + `","start_date":"2024-03-01","rating":7}`
		w := httptest.NewRecorder()
		handler.Create(w, authed(httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(body))))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"rating"`)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	handler, mockRepo := newHandler(t)

	want := Patch{Status: optional.Of(StatusCompleted), EndDate: optional.Of("2024-03-20"), Rating: optional.Of(5)}
	mockRepo.EXPECT().Update(gomock.Any(), testUser, testReadingID, want).
		Return(Reading{ID: testReadingID, Status: StatusCompleted}, nil)

	body := `{"status":"completed","end_date":"2024-03-20","rating":5}`
	r := httptest.NewRequest(http.MethodPatch, "/api/readings/"+testReadingID, strings.NewReader(body))
	r.SetPathValue("id", testReadingID)
	w := httptest.NewRecorder()
	handler.Update(w, authed(r))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestHTTPHandler_Delete(t *testing.T) {
	handler, mockRepo := newHandler(t)

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testUser, testReadingID).Return(ErrNotFound)

		r := httptest.NewRequest(http.MethodDelete, "/api/readings/"+testReadingID, nil)
		r.SetPathValue("id", testReadingID)
		w := httptest.NewRecorder()
		handler.Delete(w, authed(r))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testUser, testReadingID).Return(nil)

		r := httptest.NewRequest(http.MethodDelete, "/api/readings/"+testReadingID, nil)
		r.SetPathValue("id", testReadingID)
		w := httptest.NewRecorder()
		handler.Delete(w, authed(r))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
