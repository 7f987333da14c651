package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamManager(t *testing.T) {
	t.Run("should track registered sessions and totals", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()
		sm := NewStreamManager()

		a := NewStreamSession("a", "alice", "", bus, newFakePresence(bus), 8)
		b := NewStreamSession("b", "bob", "", bus, newFakePresence(bus), 8)
		sm.Register(a)
		sm.Register(b)
		sm.Register(a)

		got, ok := sm.GetSession("a")
		req.True(ok)
		req.Same(a, got)
		req.Len(sm.ActiveSessions(), 2)
		req.Len(sm.SessionsForUser("bob"), 1)

		stats := sm.GetStats()
		req.Equal(2, stats.ActiveSessions)
		req.Equal(int64(2), stats.TotalSessions)

		req.True(sm.Unregister("a"))
		req.False(sm.Unregister("a"))
		stats = sm.GetStats()
		req.Equal(1, stats.ActiveSessions)
		req.Equal(int64(2), stats.TotalSessions)
	})

	t.Run("should close every open session once", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()
		presence := newFakePresence(bus)
		sm := NewStreamManager()

		for _, id := range []string{"a", "b"} {
			s := NewStreamSession(id, "user-"+id, "", bus, presence, 8)
			req.NoError(s.Open(context.Background()))
			sm.Register(s)
		}

		req.Equal(2, sm.CloseAll())
		req.Equal(0, sm.CloseAll())
		req.ElementsMatch([]string{"user-a", "user-b"}, presence.Leaves())
	})
}
