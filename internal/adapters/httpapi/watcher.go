package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/httpjson"
)

type WatcherHandler struct {
	watcher *app.Watcher
}

func NewWatcherHandler(watcher *app.Watcher) *WatcherHandler {
	return &WatcherHandler{watcher: watcher}
}

func (h *WatcherHandler) Routes(r chi.Router) {
	r.Route("/watcher", func(r chi.Router) {
		r.Get("/", h.status)
		r.Post("/start", h.start)
		r.Post("/stop", h.stop)
	})
}

func (h *WatcherHandler) status(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.watcher.Status())
}

func (h *WatcherHandler) start(w http.ResponseWriter, r *http.Request) {
	// Le contexte de la requête ne doit pas piloter la boucle: elle survit
	// à la réponse HTTP.
	if err := h.watcher.Start(context.Background()); err != nil {
		switch {
		case errors.Is(err, app.ErrWatcherRunning):
			httpjson.WriteError(w, http.StatusConflict, "watcher already running")
		case errors.Is(err, app.ErrNoCourses):
			httpjson.WriteError(w, http.StatusBadRequest, "no courses configured, add at least one first")
		default:
			httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httpjson.Write(w, http.StatusAccepted, h.watcher.Status())
}

func (h *WatcherHandler) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.watcher.Stop(); err != nil {
		if errors.Is(err, app.ErrWatcherNotRunning) {
			httpjson.WriteError(w, http.StatusConflict, "watcher not running")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, h.watcher.Status())
}
