package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/matchbook/pkg/app/core"
	"github.com/uhyunpark/matchbook/pkg/storage"
)

var _ storage.TradeSink = (*KafkaPublisher)(nil)

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

func TestKafkaPublisherRecord(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w)

	ts := time.Unix(1700000000, 0).UTC()
	tr := core.Trade{ID: uuid.New(), Symbol: "AAPL", BuyOrderID: 1, SellOrderID: 2, Price: 100, Qty: 5, Aggressor: core.Buy, Timestamp: ts}
	require.NoError(t, p.Record(context.Background(), []core.Trade{tr}))
	require.NoError(t, p.Record(context.Background(), nil))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "AAPL", string(msg.Key))
	assert.True(t, msg.Time.Equal(ts))

	var got core.Trade
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, core.Buy, got.Aggressor)
	assert.Contains(t, string(msg.Value), `"aggressor":"BUY"`)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: boom})

	err := p.Record(context.Background(), []core.Trade{{Symbol: "AAPL"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
