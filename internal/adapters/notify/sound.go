// Package notify regroupe les canaux d'alerte: alarme locale (cloche,
// afplay, say) et Telegram. Tous sont best-effort.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// Sons système macOS utilisés par l'alarme. Ignorés silencieusement sur les
// plateformes où afplay n'existe pas.
var alarmSounds = []string{
	"/System/Library/Sounds/Sosumi.aiff",
	"/System/Library/Sounds/Glass.aiff",
	"/System/Library/Sounds/Basso.aiff",
}

type SoundNotifier struct {
	logger zerolog.Logger

	// Speak active le message vocal via `say`.
	Speak bool
}

var _ ports.Notifier = (*SoundNotifier)(nil)

func NewSoundNotifier(logger zerolog.Logger, speak bool) *SoundNotifier {
	return &SoundNotifier{logger: logger, Speak: speak}
}

func (n *SoundNotifier) Name() string { return "sound" }

func (n *SoundNotifier) Notify(ctx context.Context, alert domain.Alert) error {
	// Cloche terminal répétée + son système.
	for i := 0; i < 5; i++ {
		fmt.Fprint(os.Stdout, "\a")
		n.playSound(ctx, alarmSounds[0])
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
	n.playSound(ctx, alarmSounds[1])
	n.playSound(ctx, alarmSounds[2])

	if n.Speak {
		msg := fmt.Sprintf("Alert! %s is now %s. Check registration immediately!", alert.Label, alert.NewStatus)
		n.run(ctx, "say", msg)
	}
	return nil
}

func (n *SoundNotifier) playSound(ctx context.Context, path string) {
	n.run(ctx, "afplay", path)
}

// run lance la commande sans attendre; l'absence du binaire n'est pas une
// erreur d'alerte.
func (n *SoundNotifier) run(ctx context.Context, name string, args ...string) {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		n.logger.Debug().Err(err).Str("cmd", name).Msg("alarm command unavailable")
		return
	}
	go func() { _ = cmd.Wait() }()
}
