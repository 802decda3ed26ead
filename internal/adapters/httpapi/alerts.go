package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/httpjson"
)

type AlertsHandler struct {
	alerts *app.AlertService
}

func NewAlertsHandler(alerts *app.AlertService) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

func (h *AlertsHandler) Routes(r chi.Router) {
	r.Get("/alerts", h.list)
}

func (h *AlertsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	alerts, err := h.alerts.List(r.Context(), limit)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, alerts)
}
