package usecase

import (
	"fmt"
	"sync"

	"github.com/ponyo877/livechat/server/adaptor"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/rs/zerolog"
)

var (
	_ adaptor.Usecase = (*Usecase)(nil)
	_ domain.Presence = (*Usecase)(nil)
)

// Usecase is the chat gateway. Every mutation and the publish that announces
// it happen under one lock, so subscribers see events in mutation order.
type Usecase struct {
	mu       sync.Mutex
	presence PresenceRepository
	events   EventPublisher
	logger   zerolog.Logger
}

func NewUsecase(presence PresenceRepository, events EventPublisher, logger zerolog.Logger) *Usecase {
	return &Usecase{
		presence: presence,
		events:   events,
		logger:   logger,
	}
}

func (u *Usecase) Join(user string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if domain.IsReservedName(user) {
		return fmt.Errorf("join %q: reserved name: %w", user, domain.ErrConflict)
	}
	for _, existing := range u.presence.List() {
		if domain.SameUser(existing, user) {
			return fmt.Errorf("join %q: %w", user, domain.ErrConflict)
		}
	}

	u.join(user)
	return nil
}

// EnsureJoined adds user when absent. It is the lenient path used by live
// streams, which may open before or without an explicit join.
func (u *Usecase) EnsureJoined(user string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.presence.Exists(user) {
		return false
	}
	u.join(user)
	return true
}

func (u *Usecase) join(user string) {
	u.presence.Join(user)
	delivered := u.events.Publish(domain.NewUserJoinedEvent(user))
	u.logger.Info().Str("user", user).Int("delivered", delivered).Msg("user joined")
}

func (u *Usecase) Leave(user string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.presence.Leave(user)
	delivered := u.events.Publish(domain.NewUserLeftEvent(user))
	u.logger.Info().Str("user", user).Int("delivered", delivered).Msg("user left")
}

// SendMessage publishes text on behalf of user without checking presence;
// a user who just disconnected may still have a send in flight.
func (u *Usecase) SendMessage(user, text string) bool {
	if text == "" {
		return false
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	delivered := u.events.Publish(domain.NewMessageEvent(domain.NewChatMessage(user, text)))
	u.logger.Debug().Str("user", user).Int("delivered", delivered).Msg("message")
	return true
}

func (u *Usecase) DoesUserExist(user string) bool {
	return u.presence.Exists(user)
}

func (u *Usecase) ListUsers() []string {
	return u.presence.List()
}
