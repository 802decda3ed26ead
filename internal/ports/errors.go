package ports

import "errors"

// Erreurs communes aux repositories (cours, alertes, settings).
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
