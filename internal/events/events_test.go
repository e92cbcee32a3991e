package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)
	require.NoError(t, out.WriteMessage("orders.placed", []byte(`{"id":"x"}`)))
	assert.Equal(t, "[orders.placed] {\"id\":\"x\"}\n", buf.String())
}

type failingOutput struct{ closed bool }

func (f *failingOutput) WriteMessage(string, []byte) error { return errors.New("down") }
func (f *failingOutput) Close() error                      { f.closed = true; return nil }

func TestFanOutWritesEverywhere(t *testing.T) {
	var buf bytes.Buffer
	bad := &failingOutput{}
	out := FanOut{bad, NewConsoleOutput(&buf)}

	err := out.WriteMessage("t", []byte("m"))
	assert.EqualError(t, err, "down")
	assert.Equal(t, "[t] m\n", buf.String())

	require.NoError(t, out.Close())
	assert.True(t, bad.closed)
}

func TestSaramaProducerSends(t *testing.T) {
	mock := mocks.NewSyncProducer(t, newSaramaConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "hello" {
			return errors.New("unexpected payload")
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mock)
	require.NoError(t, p.WriteMessage("orders.placed", []byte("hello")))
	assert.ErrorIs(t, p.WriteMessage("orders.placed", []byte("again")), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestSaramaConfig(t *testing.T) {
	cfg := newSaramaConfig()
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, 5, cfg.Producer.Retry.Max)
	assert.Equal(t, 30*time.Second, cfg.Net.DialTimeout)
	require.NoError(t, cfg.Validate())

	// producer-only: consumer settings stay at the library defaults
	assert.Equal(t, sarama.NewConfig().Consumer.Group.Session.Timeout, cfg.Consumer.Group.Session.Timeout)
}

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifierSendsPlacedOrders(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, chatID: 42, ordersTopic: "orders.placed"}

	event := models.OrderEvent{
		Type:    models.EventOrderPlaced,
		Message: "Pesanan dari Meja A1",
		Order: models.Order{Items: []models.OrderItem{
			{MenuName: "Nasi Goreng Spesial", Quantity: 2, Price: 35000, Notes: "no chili"},
			{MenuName: "Es Teh Manis", Quantity: 1, Price: 8000},
		}},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, n.WriteMessage("menu.committed", raw))
	assert.Empty(t, bot.sent)

	require.NoError(t, n.WriteMessage("orders.placed", raw))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Pesanan dari Meja A1\n- 2x Nasi Goreng Spesial (no chili)\n- 1x Es Teh Manis\nTotal: Rp 78000", msg.Text)
}
