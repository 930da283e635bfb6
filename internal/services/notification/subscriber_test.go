package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodstall/internal/logger"
	"foodstall/internal/messaging"
	"foodstall/internal/models"
)

type fakeSource struct {
	bodies  [][]byte
	results []error
	closed  bool
}

func (f *fakeSource) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, body := range f.bodies {
		f.results = append(f.results, handler(ctx, body))
	}
	return nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

var stamp = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestFormatNotification(t *testing.T) {
	tests := []struct {
		name string
		msg  models.StatusUpdateMessage
		want string
	}{
		{
			name: "placed",
			msg:  models.StatusUpdateMessage{OrderID: "a1", OrderNumber: 42, NewStatus: "pending", Total: 250, Timestamp: stamp},
			want: "🧾 [2026-03-14 09:30:00] New order #42 placed, total ₹250.",
		},
		{
			name: "completed by cook",
			msg:  models.StatusUpdateMessage{OrderID: "a1", NewStatus: "completed", ChangedBy: "chef@foodstall.local", Timestamp: stamp},
			want: "🎉 [2026-03-14 09:30:00] Order a1 completed by chef@foodstall.local.",
		},
		{
			name: "ready",
			msg:  models.StatusUpdateMessage{OrderID: "a1", OrderNumber: 7, NewStatus: "ready", Timestamp: stamp},
			want: "✅ [2026-03-14 09:30:00] Order #7 is ready for pickup!",
		},
		{
			name: "unknown status",
			msg:  models.StatusUpdateMessage{OrderID: "a1", OrderNumber: 7, OldStatus: "ready", NewStatus: "boxed", ChangedBy: "x", Timestamp: stamp},
			want: "📋 [2026-03-14 09:30:00] Order #7 status changed from 'ready' to 'boxed' by x.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNotification(&tt.msg))
		})
	}
}

func TestSubscriber_PrintsEachMessage(t *testing.T) {
	msg := models.CreateStatusUpdateMessage("a1", 42, "", models.StatusPending, "checkout")
	msg.Total = 90
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	src := &fakeSource{bodies: [][]byte{body, []byte("not json")}}
	var out bytes.Buffer
	s := NewSubscriber(src, &out, logger.Discard())

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "New order #42 placed, total ₹90.")
	require.Len(t, src.results, 2)
	assert.NoError(t, src.results[0])
	assert.Error(t, src.results[1])
	assert.True(t, src.closed)
}

type failingSource struct{ fakeSource }

func (f *failingSource) StartConsuming(context.Context, messaging.MessageHandler) error {
	return errors.New("channel closed")
}

func TestSubscriber_ConsumerFailure(t *testing.T) {
	src := &failingSource{}
	s := NewSubscriber(src, &bytes.Buffer{}, logger.Discard())

	assert.Error(t, s.Start(context.Background()))
	assert.True(t, src.closed)
}
