package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"warkop-pos/internal/model"
	"warkop-pos/internal/ws"
	"warkop-pos/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []OrderEvent
	err error
}

func (r *recorder) Publish(_ context.Context, ev OrderEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:            7,
		Status:        model.OrderProcessing,
		PaymentStatus: model.PaymentPending,
		Source:        model.SourceQRScan,
		PaymentMethod: model.MethodCash,
		TotalPrice:    decimal.NewFromInt(20000),
		CustomerName:  "Budi",
	}
}

func TestFanoutDeliversToAllAndJoinsErrors(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("broker down")}
	c := &recorder{}

	err := Fanout{a, b, c}.Publish(context.Background(), NewOrderEvent(OrderCreated, sampleOrder()))

	assert.EqualError(t, err, "broker down")
	assert.Len(t, a.got, 1)
	assert.Len(t, c.got, 1)
	assert.Equal(t, "Takeaway", a.got[0].Table)
	assert.Equal(t, uint(7), a.got[0].OrderID)
}

func TestHubPublisherQueuesJSON(t *testing.T) {
	hub := ws.NewHub(logger.Discard())
	p := HubPublisher{Hub: hub, Log: logger.Discard()}

	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderPaid, sampleOrder())))

	msg := <-hub.Broadcast
	var ev OrderEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, OrderPaid, ev.Type)
	assert.True(t, ev.TotalPrice.Equal(decimal.NewFromInt(20000)))
}
