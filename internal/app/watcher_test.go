package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/adapters/sqlite"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// fakeSession rejoue une séquence de statuts par cours; après épuisement,
// le dernier statut se répète. Comme l'adaptateur réel, elle refuse de lire
// un cours sans onglet ouvert.
type fakeSession struct {
	mu       sync.Mutex
	statuses map[string][]string
	reads    map[string]int
	tabs     map[string]bool
	opens    map[string]int
	launched bool
	closed   bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		statuses: map[string][]string{},
		reads:    map[string]int{},
		tabs:     map[string]bool{},
		opens:    map[string]int{},
	}
}

func (f *fakeSession) Launch(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launched = true
	return nil
}

func (f *fakeSession) OpenCourse(ctx context.Context, course domain.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs[course.ID] = true
	f.opens[course.ID]++
	return nil
}

func (f *fakeSession) ReadStatus(ctx context.Context, courseID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tabs[courseID] {
		return "", ports.ErrNoTab
	}
	seq := f.statuses[courseID]
	if len(seq) == 0 {
		return "", ports.ErrStatusNotFound
	}
	i := f.reads[courseID]
	if i >= len(seq) {
		i = len(seq) - 1
	}
	f.reads[courseID]++
	return seq[i], nil
}

func (f *fakeSession) CloseCourse(courseID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tabs, courseID)
}

func (f *fakeSession) hasTab(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[id]
}

func (f *fakeSession) openCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[id]
}

func (f *fakeSession) OpenRegistration(ctx context.Context, url string) error { return nil }

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type countingNotifier struct {
	mu    sync.Mutex
	count int
	last  domain.Alert
	fail  bool
}

func (n *countingNotifier) Name() string { return "counting" }

func (n *countingNotifier) Notify(ctx context.Context, alert domain.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	n.last = alert
	if n.fail {
		return errors.New("boom")
	}
	return nil
}

func (n *countingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

type watcherFixture struct {
	watcher  *Watcher
	courses  *sqlite.CoursesRepository
	alerts   *sqlite.AlertsRepository
	session  *fakeSession
	notifier *countingNotifier
}

func newWatcherFixture(t *testing.T) *watcherFixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	coursesRepo := sqlite.NewCoursesRepository(db.SQL)
	alertsRepo := sqlite.NewAlertsRepository(db.SQL)
	settingsSvc := NewSettingsService(sqlite.NewSettingsRepository(db.SQL))
	alertsSvc := NewAlertService(zerolog.Nop(), alertsRepo, nil)
	session := newFakeSession()
	notifier := &countingNotifier{}

	w := NewWatcher(zerolog.Nop(), coursesRepo, settingsSvc, alertsSvc, session, nil, NewDynamicLimiter(1))
	w.Notifiers = func(domain.Settings) []ports.Notifier { return []ports.Notifier{notifier} }

	return &watcherFixture{watcher: w, courses: coursesRepo, alerts: alertsRepo, session: session, notifier: notifier}
}

func (f *watcherFixture) addCourse(t *testing.T, id, code string, statuses ...string) domain.Course {
	t.Helper()
	now := time.Now().UTC()
	c, err := f.courses.Create(context.Background(), domain.Course{
		ID:          id,
		Semester:    "20262",
		Code:        code,
		Label:       "Course " + code,
		URL:         CourseURL("20262", code),
		NextCheckAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}
	f.session.mu.Lock()
	f.session.statuses[id] = statuses
	f.session.mu.Unlock()
	return c
}

// Lectures successives closed, closed, open: une seule alerte, à la
// troisième lecture.
func TestWatcher_AlertsOnceOnThirdRead(t *testing.T) {
	f := newWatcherFixture(t)
	ctx := context.Background()
	course := f.addCourse(t, "c1", "56615", "closed", "closed", "open")

	// 1re lecture: baseline, pas d'alerte.
	res, err := f.watcher.checkOne(ctx, course)
	if err != nil {
		t.Fatalf("check 1: %v", err)
	}
	if res.Alerted {
		t.Fatalf("baseline read must not alert")
	}
	if res.Status != "closed" {
		t.Fatalf("status 1: want closed, got %q", res.Status)
	}

	// 2e lecture: toujours closed, pas d'alerte.
	course, _ = f.courses.Get(ctx, "c1")
	res, err = f.watcher.checkOne(ctx, course)
	if err != nil {
		t.Fatalf("check 2: %v", err)
	}
	if res.Alerted {
		t.Fatalf("closed → closed must not alert")
	}

	// 3e lecture: open, alerte.
	course, _ = f.courses.Get(ctx, "c1")
	res, err = f.watcher.checkOne(ctx, course)
	if err != nil {
		t.Fatalf("check 3: %v", err)
	}
	if !res.Alerted {
		t.Fatalf("closed → open must alert")
	}
	if f.notifier.Count() != 1 {
		t.Fatalf("notifier count: want 1, got %d", f.notifier.Count())
	}

	// 4e lecture: open se répète, pas de nouvelle alerte (la baseline a
	// été mise à jour).
	course, _ = f.courses.Get(ctx, "c1")
	res, err = f.watcher.checkOne(ctx, course)
	if err != nil {
		t.Fatalf("check 4: %v", err)
	}
	if res.Alerted {
		t.Fatalf("open → open must not re-alert")
	}
	if f.notifier.Count() != 1 {
		t.Fatalf("notifier count after repeat: want 1, got %d", f.notifier.Count())
	}

	alerts, err := f.alerts.List(ctx, 0)
	if err != nil {
		t.Fatalf("List alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("persisted alerts: want 1, got %d", len(alerts))
	}
	if alerts[0].PrevStatus != "closed" || alerts[0].NewStatus != "open" {
		t.Fatalf("alert transition: got %q → %q", alerts[0].PrevStatus, alerts[0].NewStatus)
	}
}

func TestWatcher_ReadErrorKeepsLastStatus(t *testing.T) {
	f := newWatcherFixture(t)
	ctx := context.Background()
	course := f.addCourse(t, "c1", "56615", "closed")

	if _, err := f.watcher.checkOne(ctx, course); err != nil {
		t.Fatalf("baseline check: %v", err)
	}

	// Plus de statut scripté: la session échoue.
	f.session.mu.Lock()
	f.session.statuses["c1"] = nil
	f.session.mu.Unlock()

	course, _ = f.courses.Get(ctx, "c1")
	if _, err := f.watcher.checkOne(ctx, course); err == nil {
		t.Fatalf("expected read error")
	}

	got, err := f.courses.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastStatus != "closed" {
		t.Fatalf("LastStatus after error: want closed, got %q", got.LastStatus)
	}
	if !got.NextCheckAt.After(time.Now().UTC().Add(-time.Second)) {
		t.Fatalf("NextCheckAt should be rescheduled, got %v", got.NextCheckAt)
	}
	if f.notifier.Count() != 0 {
		t.Fatalf("no alert expected on error, got %d", f.notifier.Count())
	}
}

func TestWatcher_StartRequiresCourses(t *testing.T) {
	f := newWatcherFixture(t)
	if err := f.watcher.Start(context.Background()); !errors.Is(err, ErrNoCourses) {
		t.Fatalf("want ErrNoCourses, got %v", err)
	}
}

func TestWatcher_StartStopLifecycle(t *testing.T) {
	f := newWatcherFixture(t)
	ctx := context.Background()
	f.addCourse(t, "c1", "56615", "closed")

	f.watcher.TickInterval = 10 * time.Millisecond
	if err := f.watcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.watcher.Start(ctx); !errors.Is(err, ErrWatcherRunning) {
		t.Fatalf("second Start: want ErrWatcherRunning, got %v", err)
	}

	// Attend que la boucle tourne (baseline lue).
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.watcher.Status().State == domain.WatcherRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st := f.watcher.Status().State; st != domain.WatcherRunning {
		t.Fatalf("state: want running, got %s", st)
	}

	if err := f.watcher.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if st := f.watcher.Status().State; st != domain.WatcherIdle {
		t.Fatalf("state after Stop: want idle, got %s", st)
	}
	f.session.mu.Lock()
	closed := f.session.closed
	f.session.mu.Unlock()
	if !closed {
		t.Fatalf("browser should be closed after Stop")
	}
	if err := f.watcher.Stop(); !errors.Is(err, ErrWatcherNotRunning) {
		t.Fatalf("second Stop: want ErrWatcherNotRunning, got %v", err)
	}
}

// Un cours sans onglet (ajouté après le démarrage, ou ouverture échouée au
// lancement) est ouvert à la demande par la lecture, pas seulement replanifié.
func TestWatcher_OpensTabForCourseAddedWhileRunning(t *testing.T) {
	f := newWatcherFixture(t)
	ctx := context.Background()
	f.addCourse(t, "c1", "56615", "closed")

	f.watcher.TickInterval = 10 * time.Millisecond
	if err := f.watcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = f.watcher.Stop() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.watcher.Status().State == domain.WatcherRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Ajout pendant que la boucle tourne: aucun onglet n'existe encore.
	f.addCourse(t, "c2", "56620", "open")

	for time.Now().Before(deadline) {
		c, err := f.courses.Get(ctx, "c2")
		if err == nil && c.LastStatus != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := f.courses.Get(ctx, "c2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastStatus != "open" {
		t.Fatalf("LastStatus: want open, got %q", got.LastStatus)
	}
	if f.session.openCount("c2") == 0 {
		t.Fatalf("tab for added course was never opened")
	}
	if !f.session.hasTab("c2") {
		t.Fatalf("tab for added course should stay open")
	}
}

func TestWatcher_ForgetCourseClosesTab(t *testing.T) {
	f := newWatcherFixture(t)
	ctx := context.Background()
	course := f.addCourse(t, "c1", "56615", "closed")

	// Au repos, rien à fermer (le navigateur n'est pas lancé).
	f.watcher.ForgetCourse("c1")

	f.watcher.TickInterval = time.Hour
	if err := f.watcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = f.watcher.Stop() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.watcher.Status().State == domain.WatcherRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !f.session.hasTab("c1") {
		t.Fatalf("tab should be open while running")
	}

	if err := f.courses.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	f.watcher.ForgetCourse(course.ID)
	if f.session.hasTab("c1") {
		t.Fatalf("tab should be closed after ForgetCourse")
	}
}
