package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureOutput struct {
	messages map[string][][]byte
	err      error
}

func (c *captureOutput) WriteMessage(topic string, msg []byte) error {
	if c.messages == nil {
		c.messages = make(map[string][][]byte)
	}
	c.messages[topic] = append(c.messages[topic], msg)
	return c.err
}

func (c *captureOutput) Close() error { return nil }

func sampleCart() models.Cart {
	return models.Cart{
		Items: []models.CartItem{
			{MenuItem: models.MenuItem{ID: "1", Name: "Nasi Goreng Spesial", Price: 35000}, Quantity: 2, Notes: "no chili"},
			{MenuItem: models.MenuItem{ID: "6", Name: "Kopi Susu Gula Aren", Price: 18000}, Quantity: 1},
		},
		TotalItems: 3,
		TotalPrice: 88000,
	}
}

func TestPlaceRecordsAndPublishes(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC))
	out := &captureOutput{}
	svc := NewService(kvstore.NewMemoryStore(), clk, out, "orders.placed")

	order, msg, err := svc.Place(ctx, "A3", sampleCart())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, clk.Now().UnixMilli(), order.Timestamp)
	assert.Equal(t, int64(88000), order.Total())
	assert.Equal(t, "Pesanan dari Meja A3 telah dikirim ke dapur! Mohon tunggu sebentar.", msg)

	require.Len(t, out.messages["orders.placed"], 1)
	var event models.OrderEvent
	require.NoError(t, json.Unmarshal(out.messages["orders.placed"][0], &event))
	assert.Equal(t, models.EventOrderPlaced, event.Type)
	assert.Equal(t, order, event.Order)

	listed, err := svc.List(ctx, Filter{Table: "A3"})
	require.NoError(t, err)
	assert.Equal(t, []models.Order{order}, listed)
}

func TestPlaceTakeAway(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore(), nil, nil, "orders.placed")
	_, msg, err := svc.Place(context.Background(), "", sampleCart())
	require.NoError(t, err)
	assert.Equal(t, "Pesanan untuk Take Away telah dikirim ke dapur! Mohon tunggu sebentar.", msg)
}

func TestPlaceEmptyCart(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore(), nil, nil, "orders.placed")
	_, _, err := svc.Place(context.Background(), "A1", models.Cart{})
	assert.Equal(t, ErrEmptyCart, err)
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	out := &captureOutput{err: errors.New("broker down")}
	svc := NewService(kvstore.NewMemoryStore(), nil, out, "orders.placed")

	order, _, err := svc.Place(ctx, "A1", sampleCart())
	require.NoError(t, err)
	listed, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []models.Order{order}, listed)
}

func TestCompleteAndBoard(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC))
	svc := NewService(kvstore.NewMemoryStore(), clk, nil, "orders.placed")

	first, _, err := svc.Place(ctx, "A1", sampleCart())
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, _, err = svc.Place(ctx, "A1", sampleCart())
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, _, err = svc.Place(ctx, "A4", sampleCart())
	require.NoError(t, err)

	board, err := svc.Board(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, board.ActiveTables)
	require.Len(t, board.Tables, 7)
	assert.Equal(t, TableStatus{Table: "A1", PendingOrders: 2}, board.Tables[0])
	assert.Equal(t, TableStatus{Table: "A4", PendingOrders: 1}, board.Tables[3])
	assert.Equal(t, TableStatus{Table: "A7", PendingOrders: 0}, board.Tables[6])

	done, err := svc.Complete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, done.Status)

	pending, err := svc.List(ctx, Filter{Table: "A1", Status: models.OrderStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A4", all[0].TableNumber)

	_, err = svc.Complete(ctx, "missing")
	assert.Equal(t, ErrOrderNotFound, err)
}
