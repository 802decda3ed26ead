package domain

import "time"

type Course struct {
	ID string

	// Semester est le code semestre UT (ex: 20262 pour Spring 2026).
	Semester string

	// Code est le numéro unique du cours (la fin de l'URL, ex: 56615).
	Code string

	// Label est un nom libre pour affichage ("Course 56615" par défaut).
	Label string

	// URL pointe vers la page course_schedule du registrar.
	URL string

	// LastStatus est le dernier statut normalisé lu ("" tant qu'aucune
	// lecture n'a abouti).
	LastStatus string

	NextCheckAt   time.Time
	LastCheckedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
