// Package sse writes Server-Sent Events to one client.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController
}

var streamHeaders = map[string]string{
	"Content-Type":      "text/event-stream",
	"Cache-Control":     "no-cache",
	"Connection":        "keep-alive",
	"X-Accel-Buffering": "no",
}

// New sets the event-stream headers and flushes them so the client sees the
// stream open. On a writer that cannot flush nothing is written and the
// headers are cleared, so the caller can still send an error response.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	rc := http.NewResponseController(w)

	for k, v := range streamHeaders {
		w.Header().Set(k, v)
	}
	if err := rc.Flush(); err != nil {
		for k := range streamHeaders {
			w.Header().Del(k)
		}
		return nil, fmt.Errorf("sse: flush not supported: %w", err)
	}
	return &Stream{w: w, r: r, rc: rc}, nil
}

// Send writes a named event with a JSON data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes an SSE comment, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Done is closed when the client goes away.
func (s *Stream) Done() <-chan struct{} {
	return s.r.Context().Done()
}
