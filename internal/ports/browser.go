package ports

import (
	"context"
	"errors"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
)

// ErrNotLoggedIn: la session a détecté la page SSO et l'utilisateur n'a pas
// (encore) terminé le login.
var ErrNotLoggedIn = errors.New("browser session not logged in")

// ErrStatusNotFound: la cellule de statut est absente de la page (page de
// login, page d'erreur registrar, cours inexistant).
var ErrStatusNotFound = errors.New("status cell not found on page")

// ErrNoTab: le cours n'a pas d'onglet ouvert (ajouté après le démarrage,
// onglet fermé, ou ouverture échouée). L'appelant doit repasser par
// OpenCourse.
var ErrNoTab = errors.New("no open tab for course")

// BrowserSession tient le navigateur visible partagé: un onglet par cours,
// login manuel sur le premier onglet.
type BrowserSession interface {
	// Launch démarre le navigateur. Idempotent.
	Launch(ctx context.Context) error

	// OpenCourse ouvre (ou réutilise) l'onglet du cours et navigue vers son
	// URL. Sur le premier onglet, attend que l'utilisateur termine le login
	// (borné; renvoie ErrNotLoggedIn en cas de timeout).
	OpenCourse(ctx context.Context, course domain.Course) error

	// ReadStatus recharge l'onglet du cours et extrait le statut normalisé.
	// Renvoie ErrNoTab si le cours n'a pas d'onglet ouvert.
	ReadStatus(ctx context.Context, courseID string) (string, error)

	// CloseCourse ferme l'onglet du cours s'il existe.
	CloseCourse(courseID string)

	// OpenRegistration ouvre la page de registration dans un nouvel onglet.
	OpenRegistration(ctx context.Context, url string) error

	// Close ferme tous les onglets et le navigateur. Idempotent.
	Close() error
}
