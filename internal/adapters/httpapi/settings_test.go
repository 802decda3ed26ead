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
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

func TestSettingsHandler_PutUpdatesCheckLimiter(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := app.NewSettingsService(sqlite.NewSettingsRepository(db.SQL))
	limiter := app.NewDynamicLimiter(1)

	r := chi.NewRouter()
	NewSettingsHandler(svc, func(updated domain.Settings) {
		if updated.MaxConcurrentChecks > 0 {
			limiter.SetLimit(updated.MaxConcurrentChecks)
		}
	}).Routes(r)

	s := domain.DefaultSettings()
	s.MaxConcurrentChecks = 3
	s.CheckIntervalMinutes = 2
	body, _ := json.Marshal(s)

	req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status: want %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}

	if got := limiter.Limit(); got != 3 {
		t.Fatalf("limiter limit: want 3, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	var out domain.Settings
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CheckIntervalMinutes != 2 {
		t.Fatalf("interval: want 2, got %d", out.CheckIntervalMinutes)
	}
}
