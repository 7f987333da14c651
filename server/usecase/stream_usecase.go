package usecase

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/ponyo877/livechat/server/adaptor"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/rs/zerolog"
)

var _ adaptor.StreamUsecase = (*StreamUsecase)(nil)

// StreamUsecase handles streaming-related business logic
type StreamUsecase struct {
	presence      domain.Presence
	roster        PresenceRepository
	bus           *domain.EventBus
	streamManager *domain.StreamManager
	bufferSize    int
	logger        zerolog.Logger
}

// NewStreamUsecase creates a new stream usecase
func NewStreamUsecase(
	presence domain.Presence,
	roster PresenceRepository,
	bus *domain.EventBus,
	streamManager *domain.StreamManager,
	bufferSize int,
	logger zerolog.Logger,
) *StreamUsecase {
	return &StreamUsecase{
		presence:      presence,
		roster:        roster,
		bus:           bus,
		streamManager: streamManager,
		bufferSize:    bufferSize,
		logger:        logger,
	}
}

// HandleStreamSession runs one live stream for user until the client goes
// away or the server closes it.
func (u *StreamUsecase) HandleStreamSession(ctx context.Context, user, remote string, sink domain.EventSink) error {
	session := domain.NewStreamSession(ulid.Make().String(), user, remote, u.bus, u.presence, u.bufferSize)

	u.streamManager.Register(session)
	defer u.streamManager.Unregister(session.ID)

	logger := u.logger.With().Str("session_id", session.ID).Str("user", user).Logger()
	logger.Info().Str("remote", remote).Msg("stream opened")

	err := session.Run(ctx, sink)

	logger.Info().
		Int64("dropped", session.Dropped()).
		Err(err).
		Msg("stream closed")
	return err
}

// GetStreamStats returns streaming statistics
func (u *StreamUsecase) GetStreamStats() domain.StreamStats {
	stats := u.streamManager.GetStats()
	stats.OnlineUsers = len(u.roster.List())
	return stats
}

// CloseAll closes every open stream from the server side.
func (u *StreamUsecase) CloseAll() int {
	return u.streamManager.CloseAll()
}
