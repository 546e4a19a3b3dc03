// Package kafka は注文イベントを Kafka に流す。
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"foodplaza/internal/usecase"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher は usecase.OrderEventPublisher の Kafka 実装。
// キーは注文ID（同じ注文のイベントは同じパーティションに入る）。
type OrderPublisher struct {
	writer messageWriter
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewOrderPublisher は brokers が空なら何もしない publisher を返す。
func NewOrderPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return &OrderPublisher{writer: NewWriter(brokers, topic)}
}

func (p *OrderPublisher) Publish(ctx context.Context, ev usecase.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	})
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}

// Close まで含めた publisher
type Publisher interface {
	usecase.OrderEventPublisher
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, usecase.OrderEvent) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
