package domain

import "strings"

// Statuts connus du registrar. La page peut en afficher d'autres
// ("waitlisted; open", etc.), on ne raisonne donc que sur "closed".
const (
	StatusClosed   = "closed"
	StatusOpen     = "open"
	StatusWaitlist = "waitlisted"
)

// NormalizeStatus ramène un statut affiché à sa forme comparée (trim +
// minuscules), comme le texte brut de la cellule du tableau.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ShouldAlert décide si une transition de statut déclenche une alerte:
// uniquement quand on quitte "closed". La première lecture (prev vide)
// établit la baseline et ne déclenche jamais.
func ShouldAlert(prev, cur string) bool {
	if prev != StatusClosed {
		return false
	}
	cur = NormalizeStatus(cur)
	return cur != "" && cur != StatusClosed
}
