package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should be a no-op without subscribers", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()

		req.Equal(0, bus.Publish(NewUserJoinedEvent("alice")))
		req.Equal(int64(1), bus.PublishedCount())
	})

	t.Run("should deliver only to subscribers of the event kind in order", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()

		var got []string
		bus.Subscribe(EventMessage, func(e Event) { got = append(got, "first:"+e.Message) })
		bus.Subscribe(EventMessage, func(e Event) { got = append(got, "second:"+e.Message) })
		bus.Subscribe(EventUserLeft, func(e Event) { got = append(got, "left:"+e.User) })

		n := bus.Publish(NewMessageEvent(NewChatMessage("alice", "hi")))

		req.Equal(2, n)
		req.Equal([]string{"first:hi", "second:hi"}, got)
	})

	t.Run("should let a handler unsubscribe itself without starving others", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()

		var sub Subscription
		selfCalls, otherCalls := 0, 0
		sub = bus.Subscribe(EventUserJoined, func(Event) {
			selfCalls++
			bus.Unsubscribe(sub)
		})
		bus.Subscribe(EventUserJoined, func(Event) { otherCalls++ })

		bus.Publish(NewUserJoinedEvent("alice"))
		bus.Publish(NewUserJoinedEvent("bob"))

		req.Equal(1, selfCalls)
		req.Equal(2, otherCalls)
		req.Equal(1, bus.SubscriberCount(EventUserJoined))
	})
}

func TestEventBus_SubscribeDuringPublish(t *testing.T) {
	req := require.New(t)
	bus := NewEventBus()

	late := 0
	bus.Subscribe(EventMessage, func(Event) {
		bus.Subscribe(EventMessage, func(Event) { late++ })
	})

	req.Equal(1, bus.Publish(NewMessageEvent(NewChatMessage("alice", "hi"))))
	req.Equal(0, late)
	req.Equal(2, bus.SubscriberCount(EventMessage))
}

func TestEventBus_Unsubscribe(t *testing.T) {
	t.Run("should report whether the subscription was attached", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()

		sub := bus.Subscribe(EventMessage, func(Event) {})
		req.Equal(EventMessage, sub.Kind())
		req.True(bus.Unsubscribe(sub))
		req.False(bus.Unsubscribe(sub))
		req.Equal(0, bus.SubscriberCount(EventMessage))
		req.Equal(0, bus.Publish(NewMessageEvent(NewChatMessage("alice", "hi"))))
	})

	t.Run("should stay consistent under concurrent subscribe and publish", func(t *testing.T) {
		req := require.New(t)
		bus := NewEventBus()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				sub := bus.Subscribe(EventMessage, func(Event) {})
				bus.Unsubscribe(sub)
			}()
			go func() {
				defer wg.Done()
				bus.Publish(NewMessageEvent(NewChatMessage("alice", "hi")))
			}()
		}
		wg.Wait()

		req.Equal(0, bus.SubscriberCount(EventMessage))
		req.Equal(int64(50), bus.PublishedCount())
	})
}
