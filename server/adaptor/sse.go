package adaptor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ponyo877/livechat/server/domain"
)

// EventData renders the data line payload: a JSON chat message for
// message events, the bare user name otherwise.
func EventData(event domain.Event) (string, error) {
	switch event.Kind {
	case domain.EventMessage:
		b, err := json.Marshal(event.ChatMessage())
		if err != nil {
			return "", fmt.Errorf("marshal chat message: %w", err)
		}
		return string(b), nil
	case domain.EventUserJoined, domain.EventUserLeft:
		return event.User, nil
	default:
		return "", fmt.Errorf("unknown event kind %d", event.Kind)
	}
}

func WriteEvent(w io.Writer, event domain.Event) error {
	data, err := EventData(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
	return err
}

// SSEWriter is the event sink for one text/event-stream response.
type SSEWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	rc := http.NewResponseController(w)
	// the server write timeout must not cut a long-lived stream
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("flush event stream headers: %w", err)
	}
	return &SSEWriter{w: w, rc: rc}, nil
}

func (s *SSEWriter) Send(event domain.Event) error {
	if err := WriteEvent(s.w, event); err != nil {
		return err
	}
	return s.rc.Flush()
}
