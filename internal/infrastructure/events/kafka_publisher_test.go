package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
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

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zerolog.Nop())
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(),
		ports.StockEvent{Type: ports.EventMovementRecorded, CompanyID: "c-1", BranchID: "b-a", ProductID: "p-1", OccurredAt: at},
		ports.StockEvent{Type: ports.EventTransferPrefix + "completed", CompanyID: "c-1", BranchID: "b-b", ReferenceID: "t-1", OccurredAt: at},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	first := w.msgs[0]
	assert.Equal(t, "c-1:b-a", string(first.Key))
	assert.Equal(t, at, first.Time)
	require.Len(t, first.Headers, 1)
	assert.Equal(t, HeaderEventType, first.Headers[0].Key)
	assert.Equal(t, ports.EventMovementRecorded, string(first.Headers[0].Value))

	var decoded ports.StockEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &decoded))
	assert.Equal(t, "transfer.completed", decoded.Type)
	assert.Equal(t, "t-1", decoded.ReferenceID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_ErrorDeEscritura(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{err: errors.New("broker caído")}, zerolog.Nop())
	err := p.Publish(context.Background(), ports.StockEvent{Type: ports.EventMovementRecorded})
	assert.ErrorContains(t, err, "broker caído")
	assert.NoError(t, p.Publish(context.Background()), "sin eventos no escribe")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, p.Publish(context.Background(), ports.StockEvent{Type: ports.EventMovementRecorded, BranchID: "b-a"}))
	assert.Contains(t, buf.String(), `"type":"movement.recorded"`)
	assert.Contains(t, buf.String(), `"component":"event_log"`)
}
