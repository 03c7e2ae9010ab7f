package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"warkop-pos/internal/model"
	"warkop-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderCompleted = "order.completed"
	OrderCancelled = "order.cancelled"
)

type OrderEvent struct {
	EventID       string              `json:"event_id"`
	Type          string              `json:"type"`
	OrderID       uint                `json:"order_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Source        model.OrderSource   `json:"source"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Table         string              `json:"table"`
	CustomerName  string              `json:"customer_name,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

func NewOrderEvent(kind string, o *model.Order) OrderEvent {
	return OrderEvent{
		EventID:       uuid.NewString(),
		Type:          kind,
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Source:        o.Source,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		Table:         o.TableLabel(),
		CustomerName:  o.CustomerName,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers order events after the state change has committed. Delivery is
// best effort; callers never roll back on a publish error.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HubPublisher pushes events to the websocket hub.
type HubPublisher struct {
	Hub *ws.Hub
	Log *slog.Logger
}

func (p HubPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case p.Hub.Broadcast <- msg:
	default:
		p.Log.Warn("ws broadcast buffer full, dropping event", "type", ev.Type, "order_id", ev.OrderID)
	}
	return nil
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
