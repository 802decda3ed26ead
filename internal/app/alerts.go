package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

type AlertService struct {
	logger zerolog.Logger
	repo   ports.AlertRepository
	bus    ports.EventBus
}

func NewAlertService(logger zerolog.Logger, repo ports.AlertRepository, bus ports.EventBus) *AlertService {
	return &AlertService{logger: logger, repo: repo, bus: bus}
}

type AlertDTO struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	Label      string    `json:"label"`
	PrevStatus string    `json:"prevStatus"`
	NewStatus  string    `json:"newStatus"`
	FiredAt    time.Time `json:"firedAt"`
}

func toAlertDTO(a domain.Alert) AlertDTO {
	return AlertDTO{
		ID:         a.ID,
		CourseID:   a.CourseID,
		Label:      a.Label,
		PrevStatus: a.PrevStatus,
		NewStatus:  a.NewStatus,
		FiredAt:    a.FiredAt,
	}
}

// Fire enregistre l'alerte puis la diffuse sur les canaux passés (le
// watcher les construit depuis les settings courants). Chaque canal est
// best-effort: une erreur est loggée et n'empêche ni les autres canaux ni
// la suite du cycle.
func (s *AlertService) Fire(ctx context.Context, course domain.Course, prev, cur string, notifiers []ports.Notifier) (AlertDTO, error) {
	alert := domain.Alert{
		ID:         xid.New().String(),
		CourseID:   course.ID,
		Label:      course.Label,
		PrevStatus: prev,
		NewStatus:  cur,
		FiredAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, alert)
	if err != nil {
		// L'alarme doit sonner même si la persistance échoue.
		s.logger.Error().Err(err).Str("course", course.Label).Msg("persist alert failed")
		created = alert
	}

	s.logger.Info().
		Str("course", course.Label).
		Str("prev", prev).
		Str("status", cur).
		Str("url", course.URL).
		Msg("ALERT: course status changed")
	s.publish("alert.fired", created)

	for _, n := range notifiers {
		if err := n.Notify(ctx, created); err != nil {
			s.logger.Warn().Err(err).Str("notifier", n.Name()).Msg("notifier failed")
		}
	}
	return toAlertDTO(created), nil
}

func (s *AlertService) List(ctx context.Context, limit int) ([]AlertDTO, error) {
	alerts, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertDTO(a))
	}
	return out, nil
}

func (s *AlertService) publish(topic string, alert domain.Alert) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(toAlertDTO(alert))
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
