package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram шлёт предупреждения о низком остатке в один админский чат.
type Telegram struct {
	api    sender
	chatID int64
	log    *slog.Logger
}

// NewTelegram подключается к Bot API по token.
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Info("telegram notifier ready", "bot", api.Self.UserName, "chat_id", chatID)
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) LowStock(_ context.Context, ownerID int64, items []inventory.LowStock) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, LowStockText(ownerID, items))); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.log.Debug("low stock sent", "owner_id", ownerID, "items", len(items))
	return nil
}

// LowStockText собирает текст: по одному материалу на строку.
func LowStockText(ownerID int64, items []inventory.LowStock) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Estoque baixo (usuário #%d):\n", ownerID)
	for _, it := range items {
		if it.Quantity.IsZero() {
			fmt.Fprintf(&b, "- %s: esgotado\n", it.Material)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s %s\n", it.Material, it.Quantity.String(), it.Unit)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Nop ничего не отправляет.
type Nop struct{}

func (Nop) LowStock(context.Context, int64, []inventory.LowStock) error { return nil }
