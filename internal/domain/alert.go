package domain

import "time"

// Alert est la trace d'une transition détectée (closed → autre chose).
type Alert struct {
	ID       string
	CourseID string
	Label    string

	PrevStatus string
	NewStatus  string

	FiredAt time.Time
}
