package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// RegistrationNotifier ouvre la page de registration dans un nouvel onglet
// de la session déjà loggée, pour que l'inscription soit à un clic.
type RegistrationNotifier struct {
	logger  zerolog.Logger
	session ports.BrowserSession
	url     string
}

var _ ports.Notifier = (*RegistrationNotifier)(nil)

func NewRegistrationNotifier(logger zerolog.Logger, session ports.BrowserSession, url string) *RegistrationNotifier {
	return &RegistrationNotifier{logger: logger, session: session, url: url}
}

func (n *RegistrationNotifier) Name() string { return "registration-tab" }

func (n *RegistrationNotifier) Notify(ctx context.Context, _ domain.Alert) error {
	return n.session.OpenRegistration(ctx, n.url)
}
