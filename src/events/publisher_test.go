package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-inventory/src/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishTransaction(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "inventory.item-transactions", zerolog.Nop())
	fixed := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	entry := models.ItemTransaction{
		UserID:    "u1",
		ItemCode:  "P1",
		Action:    models.ActionDecrease,
		Quantity:  decimal.NewFromInt(-3),
		CreatedAt: fixed,
	}

	require.NoError(t, p.PublishTransaction(context.Background(), entry))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "P1", string(w.msgs[0].Key))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, EventTransactionRecorded, body["eventType"])
	tx := body["transaction"].(map[string]interface{})
	assert.Equal(t, "P1", tx["itemCode"])
	assert.Equal(t, "decrease", tx["action"])
	assert.EqualValues(t, -3, tx["quantity"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, "t", zerolog.Nop())

	err := p.PublishTransaction(context.Background(), models.ItemTransaction{ItemCode: "P1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}

func TestNewKafkaWriter_DoesNotBlockCallers(t *testing.T) {
	w := newKafkaWriter([]string{"localhost:9092"}, "inventory.item-transactions", zerolog.Nop())
	defer w.Close()

	assert.True(t, w.Async)
	assert.NotNil(t, w.Completion)
	assert.Equal(t, "inventory.item-transactions", w.Topic)
	assert.NotPanics(t, func() { w.Completion(nil, errors.New("broker down")) })
}
