package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultSessionBufferSize = 64

type SessionState int32

const (
	SessionConnecting SessionState = iota
	SessionActive
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionConnecting:
		return "connecting"
	case SessionActive:
		return "active"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StreamSession is one client's push connection. Bus handlers only enqueue;
// Run drains the queue into the client's sink on its own goroutine.
type StreamSession struct {
	ID       string
	Name     string
	Remote   string
	JoinedAt time.Time

	bus      *EventBus
	presence Presence
	events   chan Event
	done     chan struct{}

	mu        sync.Mutex
	subs      []Subscription
	state     atomic.Int32
	closeOnce sync.Once
	dropped   atomic.Int64
}

func NewStreamSession(id, name, remote string, bus *EventBus, presence Presence, bufferSize int) *StreamSession {
	if bufferSize <= 0 {
		bufferSize = DefaultSessionBufferSize
	}
	return &StreamSession{
		ID:       id,
		Name:     name,
		Remote:   remote,
		JoinedAt: time.Now(),
		bus:      bus,
		presence: presence,
		events:   make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}
}

// Open subscribes to every event kind and, unless ctx is already cancelled,
// puts the user on the roster when they are missing from it.
func (s *StreamSession) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.State() != SessionConnecting {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	for _, kind := range EventKinds {
		s.subs = append(s.subs, s.bus.Subscribe(kind, s.enqueue))
	}
	s.state.Store(int32(SessionActive))

	if ctx.Err() != nil {
		s.mu.Unlock()
		s.Close()
		return ErrSessionClosed
	}
	// held so a concurrent Close leaves only after the join
	s.presence.EnsureJoined(s.Name)
	s.mu.Unlock()
	return nil
}

func (s *StreamSession) enqueue(event Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}

// Run opens the session and forwards events to sink until ctx is cancelled,
// Close is called, or the sink fails. Sink errors end the session and are
// not returned.
func (s *StreamSession) Run(ctx context.Context, sink EventSink) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case event := <-s.events:
			if err := sink.Send(event); err != nil {
				return nil
			}
		}
	}
}

// Close tears the session down once: unsubscribe, leave the roster, then
// release the transport. A session that never opened skips the leave.
// It reports whether this call did the closing.
func (s *StreamSession) Close() bool {
	closed := false
	s.closeOnce.Do(func() {
		closed = true

		s.mu.Lock()
		opened := s.State() == SessionActive
		s.state.Store(int32(SessionClosed))
		subs := s.subs
		s.subs = nil
		s.mu.Unlock()

		for _, sub := range subs {
			s.bus.Unsubscribe(sub)
		}
		if opened {
			s.presence.Leave(s.Name)
		}
		close(s.done)
	})
	return closed
}

func (s *StreamSession) Done() <-chan struct{} {
	return s.done
}

func (s *StreamSession) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *StreamSession) Dropped() int64 {
	return s.dropped.Load()
}

func (s *StreamSession) IsActive() bool {
	return s.State() == SessionActive
}

func (s *StreamSession) String() string {
	return s.Name + "@" + s.Remote + "(" + s.State().String() + ")"
}
