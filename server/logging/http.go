package logging

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// HTTPMiddleware gives every request a request id and a scoped logger, then
// writes one access line when the handler returns. Live streams only return
// on disconnect, so their line reads "stream closed".
func HTTPMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r.Header.Get(headerRequestID))
			w.Header().Set(headerRequestID, id)

			scoped := logger.With().
				Str(FieldRequestID, id).
				Str(FieldMethod, r.Method).
				Str(FieldPath, r.URL.Path).
				Str(FieldClientIP, remoteIP(r)).
				Logger()

			rw := &responseLogger{ResponseWriter: w}
			next.ServeHTTP(rw, r.WithContext(WithLogger(r.Context(), scoped)))

			msg := "request completed"
			if strings.HasPrefix(rw.Header().Get("Content-Type"), "text/event-stream") {
				msg = "stream closed"
			}
			accessEvent(&scoped, rw.code()).
				Int(FieldStatus, rw.code()).
				Int64(FieldBytes, rw.written).
				Dur(FieldLatency, time.Since(start)).
				Msg(msg)
		})
	}
}

func accessEvent(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

// responseLogger records the status and body size a handler produced.
type responseLogger struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *responseLogger) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *responseLogger) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *responseLogger) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseLogger) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// remoteIP prefers X-Real-IP, which the reverse proxy in front of the
// server sets, over the socket address.
func remoteIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
