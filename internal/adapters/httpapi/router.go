package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

type Server struct {
	logger   zerolog.Logger
	courses  *app.CourseService
	settings *app.SettingsService
	alerts   *app.AlertService
	watcher  *app.Watcher
	bus      ports.EventBus
	// checkLimiter est optionnel et permet d'appliquer maxConcurrentChecks à chaud.
	checkLimiter *app.DynamicLimiter
	// onSettingsUpdated est optionnel (ex: re-créer le client telegram).
	onSettingsUpdated func(domain.Settings)
}

func NewServer(logger zerolog.Logger, courses *app.CourseService, settings *app.SettingsService, alerts *app.AlertService, watcher *app.Watcher, bus ports.EventBus, checkLimiter *app.DynamicLimiter, onSettingsUpdated func(domain.Settings)) *Server {
	return &Server{
		logger:            logger,
		courses:           courses,
		settings:          settings,
		alerts:            alerts,
		watcher:           watcher,
		bus:               bus,
		checkLimiter:      checkLimiter,
		onSettingsUpdated: onSettingsUpdated,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Get("/", s.handleIndex)

	r.Route("/api/v1", func(r chi.Router) {
		// Pas de middleware.Timeout ici: /events est un flux SSE et les
		// checks à la demande attendent un rechargement de page.
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Get("/events", s.handleEvents)

		if s.courses != nil {
			NewCoursesHandler(s.courses, s.watcher).Routes(r)
		}
		if s.alerts != nil {
			NewAlertsHandler(s.alerts).Routes(r)
		}
		if s.watcher != nil {
			NewWatcherHandler(s.watcher).Routes(r)
		}
		if s.settings != nil {
			NewSettingsHandler(s.settings, func(updated domain.Settings) {
				if s.checkLimiter != nil && updated.MaxConcurrentChecks > 0 {
					s.checkLimiter.SetLimit(updated.MaxConcurrentChecks)
				}
				if s.onSettingsUpdated != nil {
					s.onSettingsUpdated(updated)
				}
			}).Routes(r)
		}
	})

	return r
}
