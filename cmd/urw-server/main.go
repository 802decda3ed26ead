package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/browser"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/httpapi"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/memorybus"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/notify"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/sqlite"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/app"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/buildinfo"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/config"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

func main() {
	def := config.Default()
	configPath := flag.String("config", "", "Fichier de config YAML (défaut: $URW_CONFIG)")
	addr := flag.String("addr", "", "Adresse d'écoute (ex: "+def.Addr+")")
	dbPath := flag.String("db", "", "Chemin SQLite (ex: "+def.DBPath+")")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "urw-server").Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	// Les flags explicites priment sur fichier + env.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	coursesRepo := sqlite.NewCoursesRepository(db.SQL)
	coursesSvc := app.NewCourseService(coursesRepo, bus)
	settingsRepo := sqlite.NewSettingsRepository(db.SQL)
	settingsSvc := app.NewSettingsService(settingsRepo)
	alertsRepo := sqlite.NewAlertsRepository(db.SQL)
	alertsSvc := app.NewAlertService(logger.With().Str("component", "alerts").Logger(), alertsRepo, bus)

	session := browser.New(logger.With().Str("component", "browser").Logger())

	// Limiteur global pour les lectures de pages + hook côté API settings.
	checkLimiter := app.NewDynamicLimiter(domain.DefaultSettings().MaxConcurrentChecks)
	if s, err := settingsSvc.Get(ctx); err == nil && s.MaxConcurrentChecks > 0 {
		checkLimiter.SetLimit(s.MaxConcurrentChecks)
	}

	watcher := app.NewWatcher(logger.With().Str("component", "watcher").Logger(), coursesRepo, settingsSvc, alertsSvc, session, bus, checkLimiter)
	// Les canaux d'alerte sont reconstruits à chaque déclenchement, pour
	// suivre les settings courants sans redémarrer le watcher.
	watcher.Notifiers = func(s domain.Settings) []ports.Notifier {
		var out []ports.Notifier
		if s.PlaySound {
			out = append(out, notify.NewSoundNotifier(logger.With().Str("notifier", "sound").Logger(), s.SpeakAlerts))
		}
		if s.TelegramBotToken != "" && s.TelegramChatID != 0 {
			out = append(out, notify.NewTelegramNotifier(logger.With().Str("notifier", "telegram").Logger(), s.TelegramBotToken, s.TelegramChatID))
		}
		if s.OpenRegistrationPage {
			out = append(out, notify.NewRegistrationNotifier(logger.With().Str("notifier", "registration").Logger(), session, s.RegistrationURL))
		}
		return out
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(logger, coursesSvc, settingsSvc, alertsSvc, watcher, bus, checkLimiter, nil)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	if err := watcher.Stop(); err != nil && !errors.Is(err, app.ErrWatcherNotRunning) {
		logger.Warn().Err(err).Msg("watcher stop")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
