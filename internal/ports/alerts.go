package ports

import (
	"context"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

type AlertRepository interface {
	Create(ctx context.Context, alert domain.Alert) (domain.Alert, error)
	List(ctx context.Context, limit int) ([]domain.Alert, error)
}

// Notifier est un canal d'alerte (son local, telegram, onglet registration).
// Chaque canal est best-effort: une erreur est loggée, jamais bloquante.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert domain.Alert) error
}
