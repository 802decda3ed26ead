package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/sqlite"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
)

func newCoursesRouter(t *testing.T) chi.Router {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := app.NewCourseService(sqlite.NewCoursesRepository(db.SQL), nil)
	r := chi.NewRouter()
	NewCoursesHandler(svc, nil).Routes(r)
	return r
}

func TestCoursesHandler_CreateListDelete(t *testing.T) {
	r := newCoursesRouter(t)

	body := []byte(`{"semester":"20262","code":"56615"}`)
	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status: want %d, got %d (%s)", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var created app.CourseDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Label != "Course 56615" {
		t.Fatalf("label: got %q", created.Label)
	}

	// Doublon → 409.
	req = httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status: want %d, got %d", http.StatusConflict, rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/courses", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status: want %d, got %d", http.StatusOK, rr.Code)
	}
	var list []app.CourseDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list: want 1 course, got %d", len(list))
	}

	req = httptest.NewRequest(http.MethodDelete, "/courses/"+created.ID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status: want %d, got %d", http.StatusNoContent, rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/courses/"+created.ID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted: want %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCoursesHandler_CreateRejectsBadCode(t *testing.T) {
	r := newCoursesRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader([]byte(`{"semester":"20262","code":"not-a-number"}`)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: want %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestCoursesHandler_CheckWithoutWatcher(t *testing.T) {
	r := newCoursesRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/courses/xyz/check", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}
