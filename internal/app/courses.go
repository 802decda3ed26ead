package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// BaseCourseURL est la racine des pages course_schedule du registrar.
const BaseCourseURL = "https://utdirect.utexas.edu/apps/registrar/course_schedule"

type CourseService struct {
	repo ports.CourseRepository
	bus  ports.EventBus
}

func NewCourseService(repo ports.CourseRepository, bus ports.EventBus) *CourseService {
	return &CourseService{repo: repo, bus: bus}
}

type CourseDTO struct {
	ID string `json:"id"`

	Semester string `json:"semester"`
	Code     string `json:"code"`
	Label    string `json:"label"`
	URL      string `json:"url"`

	LastStatus string `json:"lastStatus"`

	NextCheckAt   time.Time `json:"nextCheckAt"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toCourseDTO(c domain.Course) CourseDTO {
	return CourseDTO{
		ID:            c.ID,
		Semester:      c.Semester,
		Code:          c.Code,
		Label:         c.Label,
		URL:           c.URL,
		LastStatus:    c.LastStatus,
		NextCheckAt:   c.NextCheckAt,
		LastCheckedAt: c.LastCheckedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// CourseURL construit l'URL course_schedule pour un semestre et un code.
func CourseURL(semester, code string) string {
	return fmt.Sprintf("%s/%s/%s/", BaseCourseURL, semester, code)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *CourseService) Create(ctx context.Context, semester, code, label string) (CourseDTO, error) {
	semester = strings.TrimSpace(semester)
	code = strings.TrimSpace(code)
	label = strings.TrimSpace(label)
	if !isDigits(semester) {
		return CourseDTO{}, errors.New("invalid semester code (e.g. 20262 for Spring 2026)")
	}
	if !isDigits(code) {
		return CourseDTO{}, errors.New("invalid course code (numbers only, e.g. 56615)")
	}
	if label == "" {
		label = "Course " + code
	}

	now := time.Now().UTC()
	course := domain.Course{
		ID:            xid.New().String(),
		Semester:      semester,
		Code:          code,
		Label:         label,
		URL:           CourseURL(semester, code),
		LastStatus:    "",
		NextCheckAt:   now,
		LastCheckedAt: time.Time{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.repo.Create(ctx, course)
	if err != nil {
		return CourseDTO{}, err
	}
	s.publish("course.created", created)
	return toCourseDTO(created), nil
}

func (s *CourseService) Get(ctx context.Context, id string) (CourseDTO, error) {
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return CourseDTO{}, err
	}
	return toCourseDTO(course), nil
}

func (s *CourseService) List(ctx context.Context, limit int) ([]CourseDTO, error) {
	courses, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]CourseDTO, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseDTO(c))
	}
	return out, nil
}

func (s *CourseService) Update(ctx context.Context, dto CourseDTO) (CourseDTO, error) {
	existing, err := s.repo.Get(ctx, dto.ID)
	if err != nil {
		return CourseDTO{}, err
	}
	if strings.TrimSpace(dto.Label) != "" {
		existing.Label = strings.TrimSpace(dto.Label)
	}
	if strings.TrimSpace(dto.Semester) != "" || strings.TrimSpace(dto.Code) != "" {
		semester := strings.TrimSpace(dto.Semester)
		if semester == "" {
			semester = existing.Semester
		}
		code := strings.TrimSpace(dto.Code)
		if code == "" {
			code = existing.Code
		}
		if !isDigits(semester) || !isDigits(code) {
			return CourseDTO{}, errors.New("semester and course codes must be numeric")
		}
		if semester != existing.Semester || code != existing.Code {
			existing.Semester = semester
			existing.Code = code
			existing.URL = CourseURL(semester, code)
			// Nouveau cours, nouvelle baseline.
			existing.LastStatus = ""
			existing.NextCheckAt = time.Now().UTC()
		}
	}
	existing.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return CourseDTO{}, err
	}
	s.publish("course.updated", updated)
	return toCourseDTO(updated), nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err == nil {
		s.publishRaw("course.deleted", map[string]any{"id": id})
	}
	return err
}

func (s *CourseService) publish(topic string, course domain.Course) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(toCourseDTO(course))
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}

func (s *CourseService) publishRaw(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
