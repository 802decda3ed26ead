package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

type CoursesRepository struct {
	db *sql.DB
}

func NewCoursesRepository(db *sql.DB) *CoursesRepository {
	return &CoursesRepository{db: db}
}

func (r *CoursesRepository) Create(ctx context.Context, c domain.Course) (domain.Course, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses(
			id, semester, code, label, url,
			last_status,
			next_check_at, last_checked_at,
			created_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.Semester, c.Code, c.Label, c.URL,
		c.LastStatus,
		c.NextCheckAt.UTC().Format(time.RFC3339), c.LastCheckedAt.UTC().Format(time.RFC3339),
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// modernc.org/sqlite retourne souvent une erreur texte du type:
		// "constraint failed: UNIQUE constraint failed: courses.semester, courses.code (2067)"
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, "courses.") {
			return domain.Course{}, ports.ErrConflict
		}
		return domain.Course{}, err
	}
	return r.Get(ctx, c.ID)
}

func (r *CoursesRepository) Get(ctx context.Context, id string) (domain.Course, error) {
	var c domain.Course
	var nextCheck, lastChecked, created, updated string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, semester, code, label, url,
			last_status,
			next_check_at, last_checked_at,
			created_at, updated_at
		FROM courses
		WHERE id = ?
	`, id).Scan(
		&c.ID, &c.Semester, &c.Code, &c.Label, &c.URL,
		&c.LastStatus,
		&nextCheck, &lastChecked,
		&created, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Course{}, ports.ErrNotFound
		}
		return domain.Course{}, err
	}
	if t, err := time.Parse(time.RFC3339, nextCheck); err == nil {
		c.NextCheckAt = t
	}
	if t, err := time.Parse(time.RFC3339, lastChecked); err == nil {
		c.LastCheckedAt = t
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		c.UpdatedAt = t
	}
	return c, nil
}

func (r *CoursesRepository) List(ctx context.Context, limit int) ([]domain.Course, error) {
	q := `
		SELECT id FROM courses
		ORDER BY created_at ASC
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

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Course, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CoursesRepository) Update(ctx context.Context, c domain.Course) (domain.Course, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE courses
		SET semester = ?, code = ?, label = ?, url = ?,
			last_status = ?,
			next_check_at = ?, last_checked_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		c.Semester, c.Code, c.Label, c.URL,
		c.LastStatus,
		c.NextCheckAt.UTC().Format(time.RFC3339), c.LastCheckedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, "courses.") {
			return domain.Course{}, ports.ErrConflict
		}
		return domain.Course{}, err
	}
	return r.Get(ctx, c.ID)
}

func (r *CoursesRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *CoursesRepository) Due(ctx context.Context, now time.Time, limit int) ([]domain.Course, error) {
	q := `
		SELECT id FROM courses
		WHERE next_check_at <= ?
		ORDER BY next_check_at ASC
	`
	args := []any{now.UTC().Format(time.RFC3339)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Course, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
