// Package browser tient la session Playwright partagée: navigateur visible
// (le login SSO est manuel), un onglet par cours surveillé.
package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/scrape"
)

const (
	// Délai max pour que l'utilisateur termine le login SSO (duo push…).
	loginWaitTimeout  = 5 * time.Minute
	loginPollInterval = 2 * time.Second

	navigationTimeoutMs = 30000
)

// Args de stabilité pour le fallback Chromium.
var chromiumArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--disable-setuid-sandbox",
}

type Session struct {
	logger zerolog.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	browserC playwright.BrowserContext
	pages    map[string]playwright.Page
	loggedIn bool
}

var _ ports.BrowserSession = (*Session)(nil)

func New(logger zerolog.Logger) *Session {
	return &Session{logger: logger, pages: map[string]playwright.Page{}}
}

func (s *Session) Launch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return nil
	}

	if s.pw == nil {
		opts := &playwright.RunOptions{
			Verbose: false,
			Stdout:  io.Discard,
			Stderr:  io.Discard,
		}
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("install playwright: %w", err)
		}
		pw, err := playwright.Run(opts)
		if err != nil {
			return fmt.Errorf("start playwright: %w", err)
		}
		s.pw = pw
	}

	// Firefox d'abord (plus stable en headed sur macOS), sinon Chromium
	// avec les args de stabilité.
	headless := false
	browser, err := s.pw.Firefox.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("firefox launch failed, trying chromium")
		browser, err = s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: &headless,
			Args:     chromiumArgs,
		})
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("new browser context: %w", err)
	}

	s.browser = browser
	s.browserC = bctx
	s.pages = map[string]playwright.Page{}
	s.loggedIn = false
	s.logger.Info().Msg("browser launched")
	return nil
}

func (s *Session) OpenCourse(ctx context.Context, course domain.Course) error {
	s.mu.Lock()
	if s.browserC == nil {
		s.mu.Unlock()
		return fmt.Errorf("browser not launched")
	}
	page, ok := s.pages[course.ID]
	bctx := s.browserC
	s.mu.Unlock()

	if !ok {
		var err error
		page, err = bctx.NewPage()
		if err != nil {
			return fmt.Errorf("new page: %w", err)
		}
		page.SetDefaultTimeout(navigationTimeoutMs)
		s.mu.Lock()
		s.pages[course.ID] = page
		s.mu.Unlock()
	}

	s.logger.Info().Str("course", course.Code).Str("url", course.URL).Msg("opening course page")
	if _, err := page.Goto(course.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return fmt.Errorf("goto %s: %w", course.URL, err)
	}

	s.mu.Lock()
	loggedIn := s.loggedIn
	s.mu.Unlock()
	if loggedIn {
		return nil
	}

	if err := s.waitForLogin(ctx, page); err != nil {
		return err
	}
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	return nil
}

// waitForLogin attend que l'utilisateur termine le login dans le navigateur
// visible: on sort dès que le titre redevient celui du registrar ou que la
// cellule Status apparaît.
func (s *Session) waitForLogin(ctx context.Context, page playwright.Page) error {
	title, err := page.Title()
	if err != nil {
		return fmt.Errorf("read page title: %w", err)
	}
	if !scrape.IsLoginTitle(title) {
		// Déjà sur la page cours (session SSO encore valide).
		return nil
	}

	s.logger.Info().Msg("waiting for manual login in the browser window")
	deadline := time.Now().Add(loginWaitTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginPollInterval):
		}

		visible, err := page.Locator(scrape.StatusSelector).First().IsVisible()
		if err == nil && visible {
			s.logger.Info().Msg("login detected, course page loaded")
			return nil
		}
		title, err := page.Title()
		if err == nil && scrape.IsCoursePageTitle(title) {
			s.logger.Info().Msg("login detected, course page loaded")
			return nil
		}
	}
	return ports.ErrNotLoggedIn
}

func (s *Session) ReadStatus(ctx context.Context, courseID string) (string, error) {
	s.mu.Lock()
	page, ok := s.pages[courseID]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("course %s: %w", courseID, ports.ErrNoTab)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return "", fmt.Errorf("reload: %w", err)
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	return scrape.Status(html)
}

func (s *Session) CloseCourse(courseID string) {
	s.mu.Lock()
	page, ok := s.pages[courseID]
	delete(s.pages, courseID)
	s.mu.Unlock()
	if ok {
		_ = page.Close()
	}
}

func (s *Session) OpenRegistration(ctx context.Context, url string) error {
	s.mu.Lock()
	bctx := s.browserC
	s.mu.Unlock()
	if bctx == nil {
		return fmt.Errorf("browser not launched")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("new page: %w", err)
	}
	s.logger.Info().Str("url", url).Msg("opening registration page")
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, page := range s.pages {
		_ = page.Close()
		delete(s.pages, id)
	}
	if s.browserC != nil {
		_ = s.browserC.Close()
		s.browserC = nil
	}
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	s.loggedIn = false

	if s.pw != nil {
		err := s.pw.Stop()
		s.pw = nil
		if err != nil {
			return fmt.Errorf("stop playwright: %w", err)
		}
	}
	s.logger.Info().Msg("browser closed")
	return nil
}
