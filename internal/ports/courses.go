package ports

import (
	"context"
	"time"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

type CourseRepository interface {
	Create(ctx context.Context, course domain.Course) (domain.Course, error)
	Get(ctx context.Context, id string) (domain.Course, error)
	List(ctx context.Context, limit int) ([]domain.Course, error)
	Update(ctx context.Context, course domain.Course) (domain.Course, error)
	Delete(ctx context.Context, id string) error
	// Due renvoie les cours dont next_check_at est échu, les plus anciens
	// d'abord.
	Due(ctx context.Context, now time.Time, limit int) ([]domain.Course, error)
}
