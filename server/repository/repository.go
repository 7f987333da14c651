package repository

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ponyo877/livechat/server/usecase"
)

const (
	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

// Repository keeps the online roster in memory. Entries are ordered by
// join/refresh time; the oldest goes first when capacity is reached, and
// entries older than the TTL are invisible to every read.
type Repository struct {
	users *expirable.LRU[string, time.Time]
}

func NewRepository(capacity int, ttl time.Duration) usecase.PresenceRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{
		users: expirable.NewLRU[string, time.Time](capacity, nil, ttl),
	}
}

func (r *Repository) Join(user string) {
	r.users.Add(user, time.Now())
}

func (r *Repository) Leave(user string) {
	r.users.Remove(user)
}

// Exists uses Peek so checking a user never refreshes their position.
func (r *Repository) Exists(user string) bool {
	_, ok := r.users.Peek(user)
	return ok
}

func (r *Repository) List() []string {
	return r.users.Keys()
}

// JoinedAt returns when user last joined or refreshed.
func (r *Repository) JoinedAt(user string) (time.Time, bool) {
	return r.users.Peek(user)
}
