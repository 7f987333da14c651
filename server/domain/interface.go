package domain

// Presence is the roster view a live stream session needs: join on open
// when the user is missing, leave on close.
type Presence interface {
	EnsureJoined(user string) bool
	Leave(user string)
}

// EventSink writes one event to a client in its wire format.
type EventSink interface {
	Send(event Event) error
}

type StreamStats struct {
	ActiveSessions int    `json:"active_sessions"`
	TotalSessions  int64  `json:"total_sessions"`
	OnlineUsers    int    `json:"online_users"`
	Uptime         string `json:"uptime"`
}
