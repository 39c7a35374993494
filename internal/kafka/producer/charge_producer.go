package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/stripe-charge/internal/stripe"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

const (
	EventChargeCreated = "charge.created"
	EventChargeUpdated = "charge.updated"
)

// ChargeEvent представляет событие платежа для Kafka
type ChargeEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ChargeID  string    `json:"charge_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Captured  bool      `json:"captured"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChargeProducer интерфейс для отправки событий платежей
type ChargeProducer interface {
	PublishChargeCreated(ctx context.Context, resp stripe.Response) error
	PublishChargeUpdated(ctx context.Context, resp stripe.Response) error
	Close() error
}

type kafkaChargeProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
	now      func() time.Time
}

// NewKafkaChargeProducer создает новый продюсер событий платежей
func NewKafkaChargeProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) ChargeProducer {
	return &kafkaChargeProducer{
		producer: producer,
		topic:    topic,
		log:      log,
		now:      time.Now,
	}
}

// PublishChargeCreated публикует событие о создании платежа
func (p *kafkaChargeProducer) PublishChargeCreated(ctx context.Context, resp stripe.Response) error {
	return p.publishEvent(ctx, EventChargeCreated, resp)
}

// PublishChargeUpdated публикует событие об обновлении платежа
func (p *kafkaChargeProducer) PublishChargeUpdated(ctx context.Context, resp stripe.Response) error {
	return p.publishEvent(ctx, EventChargeUpdated, resp)
}

// publishEvent публикует событие платежа в Kafka
func (p *kafkaChargeProducer) publishEvent(ctx context.Context, eventType string, resp stripe.Response) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to publish charge event: %w", err)
	}

	charge, err := resp.Charge()
	if err != nil {
		return fmt.Errorf("failed to decode charge: %w", err)
	}

	event := ChargeEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ChargeID:  charge.ID,
		Amount:    charge.Amount,
		Currency:  string(charge.Currency),
		Captured:  charge.Captured,
		Status:    string(charge.Status),
		Timestamp: p.now().UTC(),
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal charge event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(charge.ID),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(eventType),
			},
		},
		Timestamp: event.Timestamp,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish charge event: %w", err)
	}

	p.log.Infow("Published charge event",
		"topic", p.topic,
		"event_type", eventType,
		"charge_id", charge.ID,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close закрывает продюсер
func (p *kafkaChargeProducer) Close() error {
	return p.producer.Close()
}

type nopChargeProducer struct{}

// NewNopChargeProducer используется, когда Kafka не настроена
func NewNopChargeProducer() ChargeProducer {
	return nopChargeProducer{}
}

func (nopChargeProducer) PublishChargeCreated(context.Context, stripe.Response) error { return nil }
func (nopChargeProducer) PublishChargeUpdated(context.Context, stripe.Response) error { return nil }
func (nopChargeProducer) Close() error                                                { return nil }
