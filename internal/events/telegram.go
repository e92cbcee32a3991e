package events

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pawonsalam/restosuite/internal/models"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier forwards order events to the kitchen chat. Messages on
// other topics are ignored.
type TelegramNotifier struct {
	bot         botSender
	chatID      int64
	ordersTopic string
}

func NewTelegramNotifier(token string, chatID int64, ordersTopic string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: api, chatID: chatID, ordersTopic: ordersTopic}, nil
}

func (t *TelegramNotifier) WriteMessage(topic string, msg []byte) error {
	if topic != t.ordersTopic {
		return nil
	}
	var event models.OrderEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("decoding order event: %w", err)
	}
	if event.Type != models.EventOrderPlaced {
		return nil
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, KitchenTicket(event)))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *TelegramNotifier) Close() error {
	return nil
}

// KitchenTicket renders an order as the plain-text ticket sent to the kitchen.
func KitchenTicket(event models.OrderEvent) string {
	var b strings.Builder
	b.WriteString(event.Message)
	b.WriteString("\n")
	for _, item := range event.Order.Items {
		fmt.Fprintf(&b, "- %dx %s", item.Quantity, item.MenuName)
		if item.Notes != "" {
			fmt.Fprintf(&b, " (%s)", item.Notes)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: Rp %d", event.Order.Total())
	return b.String()
}
