package lessons

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

type fakeStore struct {
	lessons     []domain.Lesson
	searched    []string
	patches     []Patch
	reserved    int
	err         error
	reserveErr  error
	updateFound bool
}

func (f *fakeStore) ListAll(ctx context.Context) ([]domain.Lesson, error) {
	return f.lessons, f.err
}

func (f *fakeStore) Search(ctx context.Context, query string) ([]domain.Lesson, error) {
	f.searched = append(f.searched, query)
	return f.lessons, f.err
}

func (f *fakeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	for _, l := range f.lessons {
		if l.ID == id.Hex() {
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*domain.Lesson, error) {
	f.patches = append(f.patches, patch)
	set, err := patch.SetDocument()
	if err != nil {
		return nil, err
	}
	if !f.updateFound {
		return nil, domain.ErrNotFound
	}
	lesson := domain.Lesson{ID: id.Hex()}
	if n, ok := set["spaces"].(int); ok {
		lesson.Spaces = n
	}
	return &lesson, nil
}

func (f *fakeStore) Reserve(ctx context.Context, id primitive.ObjectID, n int) (*domain.Lesson, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	f.reserved += n
	return &domain.Lesson{ID: id.Hex(), Spaces: 5 - n}, nil
}

func newTestHandler(t *testing.T, store LessonStore) *http.ServeMux {
	t.Helper()

	h, err := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /lessons", h.HandleList)
	mux.HandleFunc("GET /lessons/{id}", h.HandleGet)
	mux.HandleFunc("GET /search", h.HandleSearch)
	mux.HandleFunc("PUT /lessons/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /lessons/{id}/reserve", h.HandleReserve)
	return mux
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("returns lessons", func(t *testing.T) {
		store := &fakeStore{lessons: []domain.Lesson{{ID: "a", Subject: "Music"}, {ID: "b", Subject: "Art"}}}
		mux := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var got []domain.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(got) != 2 || got[0].Subject != "Music" {
			t.Errorf("unexpected lessons: %+v", got)
		}
	})

	t.Run("hides store errors behind 500", func(t *testing.T) {
		mux := newTestHandler(t, &fakeStore{err: errors.New("connection refused: secret-host")})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		resp := decodeError(t, rec)
		if resp["code"] != codeInternal {
			t.Errorf("expected code %s, got %s", codeInternal, resp["code"])
		}
		if strings.Contains(rec.Body.String(), "secret-host") {
			t.Errorf("internal error leaked: %s", rec.Body.String())
		}
	})
}

func TestHandler_HandleSearch(t *testing.T) {
	store := &fakeStore{lessons: []domain.Lesson{}}
	mux := newTestHandler(t, store)

	for _, target := range []string{"/search?q=%20MUSIC%20", "/search?q=", "/search"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", target, rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("%s: expected empty array, got %s", target, rec.Body.String())
		}
	}

	want := []string{"music", "", ""}
	if len(store.searched) != len(want) {
		t.Fatalf("expected %d searches, got %d", len(want), len(store.searched))
	}
	for i := range want {
		if store.searched[i] != want[i] {
			t.Errorf("search %d: expected %q, got %q", i, want[i], store.searched[i])
		}
	}
}

func TestHandler_HandleUpdate(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	t.Run("coerces spaces and returns the updated lesson", func(t *testing.T) {
		store := &fakeStore{updateFound: true}
		mux := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodPut, "/lessons/"+id, strings.NewReader(`{"spaces":"4"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var lesson domain.Lesson
		if err := json.Unmarshal(rec.Body.Bytes(), &lesson); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if lesson.Spaces != 4 {
			t.Errorf("expected spaces 4, got %d", lesson.Spaces)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		mux := newTestHandler(t, &fakeStore{})

		req := httptest.NewRequest(http.MethodPut, "/lessons/"+id, strings.NewReader(`{"spaces":3}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		if resp := decodeError(t, rec); resp["code"] != codeNotFound {
			t.Errorf("expected code %s, got %s", codeNotFound, resp["code"])
		}
	})

	t.Run("malformed id is a client error", func(t *testing.T) {
		store := &fakeStore{updateFound: true}
		mux := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodPut, "/lessons/not-an-id", strings.NewReader(`{"spaces":3}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if resp := decodeError(t, rec); resp["code"] != codeInvalidID {
			t.Errorf("expected code %s, got %s", codeInvalidID, resp["code"])
		}
		if len(store.patches) != 0 {
			t.Errorf("expected store not to be called, got %d calls", len(store.patches))
		}
	})

	t.Run("rejects bodies that are not objects", func(t *testing.T) {
		mux := newTestHandler(t, &fakeStore{updateFound: true})

		req := httptest.NewRequest(http.MethodPut, "/lessons/"+id, strings.NewReader(`[1,2]`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleReserve(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	t.Run("reserves spaces", func(t *testing.T) {
		store := &fakeStore{}
		mux := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodPost, "/lessons/"+id+"/reserve", strings.NewReader(`{"spaces":2}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.reserved != 2 {
			t.Errorf("expected 2 spaces reserved, got %d", store.reserved)
		}
	})

	t.Run("insufficient spaces is a conflict", func(t *testing.T) {
		mux := newTestHandler(t, &fakeStore{reserveErr: domain.ErrInsufficientSpaces})

		req := httptest.NewRequest(http.MethodPost, "/lessons/"+id+"/reserve", strings.NewReader(`{"spaces":50}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("zero spaces is rejected", func(t *testing.T) {
		store := &fakeStore{}
		mux := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodPost, "/lessons/"+id+"/reserve", strings.NewReader(`{"spaces":0}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if store.reserved != 0 {
			t.Errorf("expected nothing reserved, got %d", store.reserved)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	mux := newTestHandler(t, &fakeStore{lessons: []domain.Lesson{{ID: id, Subject: "Chess"}}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons/"+primitive.NewObjectID().Hex(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
