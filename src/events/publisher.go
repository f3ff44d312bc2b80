package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"household-inventory/src/models"
)

const EventTransactionRecorded = "ItemTransactionRecorded"

// Publisher fans committed ledger entries out to other systems.
type Publisher interface {
	PublishTransaction(ctx context.Context, entry models.ItemTransaction) error
	Close() error
}

type TransactionEvent struct {
	EventType   string                 `json:"eventType"`
	Transaction models.ItemTransaction `json:"transaction"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ============ NOOP ============

type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, models.ItemTransaction) error { return nil }
func (NoopPublisher) Close() error                                                   { return nil }

// ============ KAFKA ============

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
	now    func() time.Time
}

// NewKafkaPublisher - Build a publisher writing to topic, keyed by item code.
// Writes are async; delivery failures are only logged.
func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	p := newKafkaPublisher(nil, topic, log)
	p.writer = newKafkaWriter(brokers, topic, p.log)
	return p
}

func newKafkaWriter(brokers []string, topic string, log zerolog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		Async:                  true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn().Err(err).Int("messages", len(msgs)).Msg("failed to deliver transaction events")
			}
		},
	}
}

func newKafkaPublisher(w messageWriter, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		log:    log.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
		now:    time.Now,
	}
}

func (p *KafkaPublisher) PublishTransaction(ctx context.Context, entry models.ItemTransaction) error {
	payload, err := json.Marshal(TransactionEvent{
		EventType:   EventTransactionRecorded,
		Transaction: entry,
		Timestamp:   p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(entry.ItemCode),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTransactionRecorded)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	p.log.Debug().
		Str("item_code", entry.ItemCode).
		Str("action", string(entry.Action)).
		Msg("transaction event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
