// Package publish streams executed trades to downstream consumers
package publish

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageWriter is the subset of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per trade, keyed by symbol so every
// symbol's trades stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Record implements storage.TradeSink
func (p *KafkaPublisher) Record(ctx context.Context, trades []core.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(t)
		if err != nil {
			return errors.Wrap(err, "marshal trade")
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(t.Symbol),
			Value: value,
			Time:  t.Timestamp,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrapf(err, "publish %d trades", len(msgs))
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
