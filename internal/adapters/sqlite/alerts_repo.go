package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

type AlertsRepository struct {
	db *sql.DB
}

func NewAlertsRepository(db *sql.DB) *AlertsRepository {
	return &AlertsRepository{db: db}
}

func (r *AlertsRepository) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts(id, course_id, label, prev_status, new_status, fired_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, a.ID, a.CourseID, a.Label, a.PrevStatus, a.NewStatus, a.FiredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return domain.Alert{}, err
	}
	return a, nil
}

func (r *AlertsRepository) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	q := `
		SELECT id, course_id, label, prev_status, new_status, fired_at
		FROM alerts
		ORDER BY fired_at DESC
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Alert{}
	for rows.Next() {
		var a domain.Alert
		var fired string
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Label, &a.PrevStatus, &a.NewStatus, &fired); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, fired); err == nil {
			a.FiredAt = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
