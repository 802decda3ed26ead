package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/domain"
	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

// TelegramNotifier pousse l'alerte sur un chat Telegram. Le client est créé
// paresseusement: le token peut arriver plus tard via les settings.
type TelegramNotifier struct {
	logger zerolog.Logger

	token  string
	chatID int64
	client *tgbotapi.BotAPI
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

func NewTelegramNotifier(logger zerolog.Logger, token string, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{logger: logger, token: token, chatID: chatID}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(ctx context.Context, alert domain.Alert) error {
	if n.token == "" || n.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if n.client == nil {
		client, err := tgbotapi.NewBotAPI(n.token)
		if err != nil {
			return fmt.Errorf("telegram client: %w", err)
		}
		n.client = client
	}

	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf(
		"🎉 %s status changed!\nPrevious: %s\nCurrent: %s\nGo register now.",
		alert.Label, alert.PrevStatus, alert.NewStatus,
	))
	if _, err := n.client.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Info().Str("course", alert.Label).Msg("telegram alert sent")
	return nil
}
