// Package scrape extrait le statut d'inscription depuis le HTML de la page
// course_schedule du registrar, et classifie les titres de page pour la
// détection de login SSO.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// StatusSelector cible la cellule "Status" de la ligne du cours.
const StatusSelector = `td[data-th="Status"]`

// Titres observés: la page SSO affiche "Sign in ..." (ou "Stale Request"
// après expiration), la page cours affiche "UT Austin Registrar".
const loggedInTitle = "UT Austin Registrar"

// Status extrait le statut normalisé de la première cellule Status du
// document. Renvoie ports.ErrStatusNotFound si la cellule est absente.
func Status(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	cell := doc.Find(StatusSelector).First()
	if cell.Length() == 0 {
		return "", ports.ErrStatusNotFound
	}
	status := domain.NormalizeStatus(cell.Text())
	if status == "" {
		return "", ports.ErrStatusNotFound
	}
	return status, nil
}

// HasStatusCell dit si la page contient la cellule Status (donc si on est
// bien sur la page cours, login terminé).
func HasStatusCell(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(StatusSelector).Length() > 0
}

// IsLoginTitle reconnaît les titres de la page de login SSO.
func IsLoginTitle(title string) bool {
	return strings.Contains(title, "Sign in") || strings.Contains(title, "Stale Request")
}

// IsCoursePageTitle reconnaît le titre de la page cours une fois loggé.
func IsCoursePageTitle(title string) bool {
	return strings.Contains(title, loggedInTitle) && !strings.Contains(title, "Sign in")
}
