package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrQueueFull = errors.New("kafka publish queue full")

// KafkaPublisher queues events for an async kafka writer, keyed by order id so all
// events of one order land on the same partition.
type KafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, buf int, log *slog.Logger) *KafkaPublisher {
	log = log.With("component", "kafka_publisher")
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Error("kafka write failed", "messages", len(messages), "error", err)
				}
			},
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log,
	}
}

func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.log.Error("kafka write failed", "key", string(m.Key), "error", err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			p.log.Error("kafka writer close failed", "error", err)
		}
	}()
}

// Publish never blocks; when the queue is full the event is dropped.
func (p *KafkaPublisher) Publish(_ context.Context, ev OrderEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	m := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.OrderID), 10)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.Type)},
		},
	}
	select {
	case p.inbox <- m:
		return nil
	default:
		p.log.Warn("kafka queue full, dropping event", "type", ev.Type, "order_id", ev.OrderID)
		return ErrQueueFull
	}
}

// Close flushes queued messages and waits for the writer to shut down.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.closeCh
}
