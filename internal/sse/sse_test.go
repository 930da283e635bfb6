package sse

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_SendWritesEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)

	s, err := New(rec, req)
	require.NoError(t, err)
	require.NoError(t, s.Send("order", map[string]string{"status": "pending"}))
	require.NoError(t, s.Comment("ping"))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: order\ndata: {\"status\":\"pending\"}\n\n: ping\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}

// bufferWriter is a ResponseWriter without Flush.
type bufferWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (w *bufferWriter) Header() http.Header         { return w.header }
func (w *bufferWriter) Write(b []byte) (int, error) { return w.body.Write(b) }
func (w *bufferWriter) WriteHeader(status int)      { w.status = status }

func TestNew_NonFlusherLeavesResponseUncommitted(t *testing.T) {
	w := &bufferWriter{header: http.Header{}}
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)

	s, err := New(w, req)

	require.Error(t, err)
	assert.ErrorIs(t, err, http.ErrNotSupported)
	assert.Nil(t, s)
	assert.Zero(t, w.status)
	assert.Zero(t, w.body.Len())
	assert.Empty(t, w.header.Get("Content-Type"))
}

func TestNew_CommitsStatusOnFlush(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := New(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}
