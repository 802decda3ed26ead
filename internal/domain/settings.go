package domain

import "time"

type Settings struct {
	// Intervalle entre deux cycles de vérification.
	CheckIntervalMinutes int `json:"checkIntervalMinutes"`

	// Page de registration ouverte dans un nouvel onglet quand un cours
	// s'ouvre.
	RegistrationURL      string `json:"registrationUrl"`
	OpenRegistrationPage bool   `json:"openRegistrationPage"`

	// Alarme locale.
	PlaySound   bool `json:"playSound"`
	SpeakAlerts bool `json:"speakAlerts"`

	// Telegram (optionnel): si le token est vide, pas de notification.
	TelegramBotToken string `json:"telegramBotToken"`
	TelegramChatID   int64  `json:"telegramChatId"`

	// Nombre de lectures de page simultanées sur la session navigateur
	// partagée (la boucle + les checks à la demande via l'API).
	MaxConcurrentChecks int `json:"maxConcurrentChecks"`
}

func DefaultSettings() Settings {
	return Settings{
		CheckIntervalMinutes: 5,
		RegistrationURL:      "https://utdirect.utexas.edu/registration/registration.WBX",
		OpenRegistrationPage: true,
		PlaySound:            true,
		SpeakAlerts:          true,
		MaxConcurrentChecks:  1,
	}
}

func (s Settings) CheckInterval() time.Duration {
	m := s.CheckIntervalMinutes
	if m <= 0 {
		m = 5
	}
	return time.Duration(m) * time.Minute
}
