// Package events publica los eventos de stock ya confirmados hacia sistemas externos.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// HeaderEventType cabecera con el tipo de evento para filtrar sin decodificar.
const HeaderEventType = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe eventos JSON en un topic. La clave es company:branch para
// conservar el orden de los eventos de una misma sucursal en una partición.
type KafkaPublisher struct {
	w      messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher crea el writer hacia brokers/topic.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, logger: logger.With().Str("component", "kafka_publisher").Logger()}
}

// Publish serializa y escribe los eventos en un único lote.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.StockEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	p.logger.Debug().Int("events", len(msgs)).Msg("eventos publicados")
	return nil
}

// Close vacía el lote pendiente y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func toMessage(e ports.StockEvent) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("evento %s: %w", e.Type, err)
	}
	return kafka.Message{
		Key:     []byte(e.CompanyID + ":" + e.BranchID),
		Value:   value,
		Time:    e.OccurredAt,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(e.Type)}},
	}, nil
}
