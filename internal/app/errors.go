package app

import (
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

var ErrConflict = ports.ErrConflict

// CodedError porte un code d'erreur stable, publié dans les events
// course.check_failed pour que l'UI puisse distinguer les causes.
//
// Exemples de codes: not_logged_in, status_not_found, navigation_error.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }
