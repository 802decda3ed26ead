package ports

import (
	"context"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Put(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}
