// Package orders records confirmed carts on the waiter board and announces
// them to the kitchen.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/juju/clock"
	"github.com/lucsky/cuid"
	"github.com/pawonsalam/restosuite/internal/events"
	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

const tableCount = 7

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// Tables lists the dine-in tables shown on the waiter board.
func Tables() []string {
	tables := make([]string, tableCount)
	for i := range tables {
		tables[i] = fmt.Sprintf("A%d", i+1)
	}
	return tables
}

// ConfirmationMessage is the text shown to the guest and sent to the kitchen.
func ConfirmationMessage(tableNumber string) string {
	info := "untuk Take Away"
	if tableNumber != "" {
		info = "dari Meja " + tableNumber
	}
	return fmt.Sprintf("Pesanan %s telah dikirim ke dapur! Mohon tunggu sebentar.", info)
}

type Filter struct {
	Table  string
	Status string
}

type TableStatus struct {
	Table         string `json:"table"`
	PendingOrders int    `json:"pendingOrders"`
}

type Board struct {
	Tables       []TableStatus `json:"tables"`
	ActiveTables int           `json:"activeTables"`
}

type Service struct {
	mu     sync.Mutex
	store  kvstore.Store
	clock  clock.Clock
	output events.OutputDestination
	topic  string
}

func NewService(store kvstore.Store, clk clock.Clock, output events.OutputDestination, topic string) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	if output == nil {
		output = events.Discard{}
	}
	return &Service{store: store, clock: clk, output: output, topic: topic}
}

func (s *Service) load(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.KeyOrders, &orders); err != nil {
		return nil, errors.Wrap(err, "loading orders")
	}
	return orders, nil
}

// Place turns the cart into a pending order. Publishing is best effort; the
// order is already recorded when the kitchen notification fails.
func (s *Service) Place(ctx context.Context, tableNumber string, cart models.Cart) (models.Order, string, error) {
	if len(cart.Items) == 0 {
		return models.Order{}, "", ErrEmptyCart
	}

	now := s.clock.Now()
	order := models.Order{
		ID:          cuid.New(),
		TableNumber: tableNumber,
		Status:      models.OrderStatusPending,
		Timestamp:   now.UnixMilli(),
		Items:       make([]models.OrderItem, 0, len(cart.Items)),
	}
	for _, line := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuName: line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Notes:    line.Notes,
		})
	}

	s.mu.Lock()
	orders, err := s.load(ctx)
	if err == nil {
		orders = append(orders, order)
		err = kvstore.SetJSON(ctx, s.store, kvstore.KeyOrders, orders)
	}
	s.mu.Unlock()
	if err != nil {
		return models.Order{}, "", errors.Wrap(err, "recording order")
	}

	message := ConfirmationMessage(tableNumber)
	s.publish(models.OrderEvent{
		Type:      models.EventOrderPlaced,
		Order:     order,
		Message:   message,
		Timestamp: order.Timestamp,
	})
	return order, message, nil
}

func (s *Service) publish(event models.OrderEvent) {
	raw, err := json.Marshal(event)
	if err == nil {
		err = s.output.WriteMessage(s.topic, raw)
	}
	if err != nil {
		logger.GetLogger().Warnw("failed to publish order event", "order", event.Order.ID, "error", err)
	}
}

// List returns matching orders, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, error) {
	s.mu.Lock()
	orders, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Table != "" && o.TableNumber != f.Table {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (s *Service) Complete(ctx context.Context, id string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return models.Order{}, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = models.OrderStatusCompleted
		if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyOrders, orders); err != nil {
			return models.Order{}, errors.Wrap(err, "completing order")
		}
		s.publish(models.OrderEvent{
			Type:      models.EventOrderCompleted,
			Order:     orders[i],
			Timestamp: s.clock.Now().UnixMilli(),
		})
		return orders[i], nil
	}
	return models.Order{}, ErrOrderNotFound
}

// Board summarises pending orders per table.
func (s *Service) Board(ctx context.Context) (Board, error) {
	pending, err := s.List(ctx, Filter{Status: models.OrderStatusPending})
	if err != nil {
		return Board{}, err
	}
	counts := make(map[string]int)
	for _, o := range pending {
		counts[o.TableNumber]++
	}

	board := Board{ActiveTables: len(counts)}
	for _, table := range Tables() {
		board.Tables = append(board.Tables, TableStatus{Table: table, PendingOrders: counts[table]})
	}
	return board, nil
}
