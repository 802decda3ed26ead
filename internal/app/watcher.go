package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

var (
	ErrWatcherRunning    = errors.New("watcher already running")
	ErrWatcherNotRunning = errors.New("watcher not running")
	ErrNoCourses         = errors.New("no courses configured")
)

// NotifierFactory construit les canaux d'alerte depuis les settings du
// moment (son, telegram, onglet registration). Injectée par le main pour
// garder app/ sans dépendance vers les adapters.
type NotifierFactory func(settings domain.Settings) []ports.Notifier

// Watcher orchestre la surveillance: lance le navigateur, ouvre un onglet
// par cours (login manuel sur le premier), prend la baseline, puis boucle
// en rechargeant les cours échus et alerte sur les transitions closed → *.
type Watcher struct {
	logger   zerolog.Logger
	courses  ports.CourseRepository
	settings *SettingsService
	alerts   *AlertService
	session  ports.BrowserSession
	bus      ports.EventBus
	limiter  *DynamicLimiter

	// Notifiers est optionnelle; sans elle, les alertes ne sortent que sur
	// le bus et les logs.
	Notifiers NotifierFactory

	// TickInterval est la granularité de la boucle (pas l'intervalle entre
	// deux lectures d'un même cours, qui vient des settings).
	TickInterval time.Duration
	BatchSize    int

	mu        sync.Mutex
	state     domain.WatcherState
	lastError string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewWatcher(logger zerolog.Logger, courses ports.CourseRepository, settings *SettingsService, alerts *AlertService, session ports.BrowserSession, bus ports.EventBus, limiter *DynamicLimiter) *Watcher {
	return &Watcher{
		logger:       logger,
		courses:      courses,
		settings:     settings,
		alerts:       alerts,
		session:      session,
		bus:          bus,
		limiter:      limiter,
		TickInterval: 30 * time.Second,
		BatchSize:    20,
		state:        domain.WatcherIdle,
	}
}

type WatcherStatus struct {
	State     domain.WatcherState `json:"state"`
	StartedAt time.Time           `json:"startedAt,omitempty"`
	LastError string              `json:"lastError,omitempty"`
}

func (w *Watcher) Status() WatcherStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := WatcherStatus{State: w.state, LastError: w.lastError}
	if w.state != domain.WatcherIdle {
		st.StartedAt = w.startedAt
	}
	return st
}

func (w *Watcher) setState(next domain.WatcherState) {
	w.mu.Lock()
	if !domain.CanTransition(w.state, next) {
		w.logger.Warn().Str("from", string(w.state)).Str("to", string(next)).Msg("ignoring invalid watcher transition")
		w.mu.Unlock()
		return
	}
	w.state = next
	w.mu.Unlock()

	if w.bus != nil {
		b, _ := json.Marshal(map[string]string{"state": string(next)})
		w.bus.Publish("watcher.state", b)
	}
}

// Start lance la surveillance en tâche de fond. Échoue si une surveillance
// est déjà en cours ou si aucun cours n'est configuré.
func (w *Watcher) Start(parent context.Context) error {
	w.mu.Lock()
	if w.state != domain.WatcherIdle {
		w.mu.Unlock()
		return ErrWatcherRunning
	}

	courses, err := w.courses.List(parent, 0)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if len(courses) == 0 {
		w.mu.Unlock()
		return ErrNoCourses
	}

	ctx, cancel := context.WithCancel(parent)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.startedAt = time.Now().UTC()
	w.lastError = ""
	w.state = domain.WatcherStarting
	w.mu.Unlock()

	if w.bus != nil {
		b, _ := json.Marshal(map[string]string{"state": string(domain.WatcherStarting)})
		w.bus.Publish("watcher.state", b)
	}

	go w.run(ctx, courses)
	return nil
}

// Stop interrompt la boucle et ferme le navigateur. Bloque jusqu'à l'arrêt
// effectif.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.state == domain.WatcherIdle {
		w.mu.Unlock()
		return ErrWatcherNotRunning
	}
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, courses []domain.Course) {
	defer close(w.done)
	defer func() {
		w.setState(domain.WatcherStopping)
		if err := w.session.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("browser close failed")
		}
		w.setState(domain.WatcherIdle)
	}()

	if err := w.session.Launch(ctx); err != nil {
		w.fail(err, "browser launch failed")
		return
	}

	// Premier onglet: navigation + attente du login manuel.
	w.setState(domain.WatcherWaitingLogin)
	if err := w.session.OpenCourse(ctx, courses[0]); err != nil {
		w.fail(err, "login failed")
		return
	}

	// Les onglets suivants réutilisent la session SSO.
	for _, c := range courses[1:] {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := w.session.OpenCourse(ctx, c); err != nil {
			w.logger.Warn().Err(err).Str("course", c.Code).Msg("open course tab failed, will retry on next check")
		}
	}
	w.setState(domain.WatcherRunning)

	// Baseline: première lecture de chaque cours (ne déclenche jamais, le
	// statut précédent en base est vide).
	w.logger.Info().Int("courses", len(courses)).Msg("initial status check")
	for _, c := range courses {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := w.checkOne(ctx, c); err != nil {
			w.logger.Warn().Err(err).Str("course", c.Code).Msg("initial check failed")
		}
	}

	interval := w.TickInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info().Dur("tick", interval).Msg("watch loop started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("watch loop stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) fail(err error, msg string) {
	w.logger.Error().Err(err).Msg(msg)
	w.mu.Lock()
	w.lastError = err.Error()
	w.mu.Unlock()
}

func (w *Watcher) tick(ctx context.Context) {
	limit := w.BatchSize
	if limit <= 0 {
		limit = 20
	}

	due, err := w.courses.Due(ctx, time.Now().UTC(), limit)
	if err != nil {
		w.logger.Error().Err(err).Msg("due query failed")
		return
	}

	for _, c := range due {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := w.checkOne(ctx, c); err != nil {
			w.logger.Warn().Err(err).Str("course", c.Code).Msg("course check failed, retrying next cycle")
		}
	}
}

type CheckResult struct {
	Course  CourseDTO `json:"course"`
	Status  string    `json:"status"`
	Alerted bool      `json:"alerted"`
}

// CheckCourse déclenche une lecture immédiate d'un cours (API). Nécessite
// une session en cours (le login est interactif).
func (w *Watcher) CheckCourse(ctx context.Context, id string) (CheckResult, error) {
	w.mu.Lock()
	running := w.state == domain.WatcherRunning
	w.mu.Unlock()
	if !running {
		return CheckResult{}, ErrWatcherNotRunning
	}

	course, err := w.courses.Get(ctx, id)
	if err != nil {
		return CheckResult{}, err
	}
	return w.checkOne(ctx, course)
}

// ForgetCourse ferme l'onglet du cours (suppression, ou changement de
// semestre/code qui invalide l'URL). S'il est encore surveillé, l'onglet
// sera rouvert à la prochaine lecture.
func (w *Watcher) ForgetCourse(id string) {
	w.mu.Lock()
	active := w.state != domain.WatcherIdle
	w.mu.Unlock()
	if active {
		w.session.CloseCourse(id)
	}
}

// checkOne recharge l'onglet du cours, compare le statut au précédent,
// alerte sur une transition closed → autre et persiste le nouvel état.
func (w *Watcher) checkOne(ctx context.Context, course domain.Course) (CheckResult, error) {
	if w.limiter != nil {
		if err := w.limiter.Acquire(ctx); err != nil {
			return CheckResult{}, err
		}
		defer w.limiter.Release()
	}

	settings, err := w.settings.Get(ctx)
	if err != nil {
		settings = domain.DefaultSettings()
	}
	now := time.Now().UTC()
	interval := settings.CheckInterval()

	w.logger.Info().Str("course", course.Code).Msg("checking")
	status, err := w.session.ReadStatus(ctx, course.ID)
	if errors.Is(err, ports.ErrNoTab) {
		// Cours ajouté après le démarrage, ou onglet dont l'ouverture avait
		// échoué: on (r)ouvre avant de lire.
		w.logger.Info().Str("course", course.Code).Msg("opening missing course tab")
		if oerr := w.session.OpenCourse(ctx, course); oerr != nil {
			err = oerr
		} else {
			status, err = w.session.ReadStatus(ctx, course.ID)
		}
	}
	if err != nil {
		// Best-effort: on garde le dernier statut connu et on repasse au
		// prochain cycle.
		course.LastCheckedAt = now
		course.NextCheckAt = now.Add(interval)
		course.UpdatedAt = now
		_, _ = w.courses.Update(ctx, course)
		w.publishCheckFailed(course, err)
		return CheckResult{}, err
	}

	prev := course.LastStatus
	alerted := domain.ShouldAlert(prev, status)

	course.LastStatus = status
	course.LastCheckedAt = now
	course.NextCheckAt = now.Add(interval)
	course.UpdatedAt = now
	updated, err := w.courses.Update(ctx, course)
	if err != nil {
		return CheckResult{}, err
	}

	w.logger.Info().Str("course", course.Code).Str("status", status).Msg("status read")
	if w.bus != nil {
		b, _ := json.Marshal(map[string]string{
			"courseId": updated.ID,
			"code":     updated.Code,
			"status":   status,
			"prev":     prev,
		})
		w.bus.Publish("course.checked", b)
	}

	if alerted && w.alerts != nil {
		var notifiers []ports.Notifier
		if w.Notifiers != nil {
			notifiers = w.Notifiers(settings)
		}
		if _, err := w.alerts.Fire(ctx, updated, prev, status, notifiers); err != nil {
			w.logger.Warn().Err(err).Str("course", course.Code).Msg("alert dispatch failed")
		}
	}

	return CheckResult{Course: toCourseDTO(updated), Status: status, Alerted: alerted}, nil
}

func (w *Watcher) publishCheckFailed(course domain.Course, err error) {
	if w.bus == nil {
		return
	}
	code := "navigation_error"
	if errors.Is(err, ports.ErrStatusNotFound) {
		code = "status_not_found"
	} else if errors.Is(err, ports.ErrNotLoggedIn) {
		code = "not_logged_in"
	}
	cerr := &CodedError{Code: code, Message: fmt.Sprintf("check %s failed", course.Code), Err: err}
	b, _ := json.Marshal(map[string]string{
		"courseId": course.ID,
		"code":     cerr.Code,
		"error":    cerr.Error(),
	})
	w.bus.Publish("course.check_failed", b)
}
