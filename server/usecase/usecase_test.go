package usecase

import (
	"testing"

	"github.com/ponyo877/livechat/server/domain"
	"github.com/ponyo877/livechat/server/usecase/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUsecase_Join(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresence := mocks.NewMockPresenceRepository(ctrl)
	mockEvents := mocks.NewMockEventPublisher(ctrl)
	uc := NewUsecase(mockPresence, mockEvents, zerolog.Nop())

	t.Run("should add the user and announce the join", func(t *testing.T) {
		req := require.New(t)

		gomock.InOrder(
			mockPresence.EXPECT().List().Return([]string{"bob"}).Times(1),
			mockPresence.EXPECT().Join("alice").Times(1),
			mockEvents.EXPECT().
				Publish(eventMatcher{kind: domain.EventUserJoined, user: "alice"}).
				Return(1).
				Times(1),
		)

		req.NoError(uc.Join("alice"))
	})

	t.Run("should reject an online name in any case without mutating", func(t *testing.T) {
		req := require.New(t)

		mockPresence.EXPECT().List().Return([]string{"bob"}).Times(1)
		mockPresence.EXPECT().Join(gomock.Any()).Times(0)
		mockEvents.EXPECT().Publish(gomock.Any()).Times(0)

		req.ErrorIs(uc.Join("BOB"), domain.ErrConflict)
	})

	t.Run("should reject the reserved system name", func(t *testing.T) {
		req := require.New(t)

		mockPresence.EXPECT().List().Times(0)
		mockPresence.EXPECT().Join(gomock.Any()).Times(0)

		req.ErrorIs(uc.Join("System"), domain.ErrConflict)
	})
}

func TestUsecase_EnsureJoined(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresence := mocks.NewMockPresenceRepository(ctrl)
	mockEvents := mocks.NewMockEventPublisher(ctrl)
	uc := NewUsecase(mockPresence, mockEvents, zerolog.Nop())

	t.Run("should join a missing user", func(t *testing.T) {
		req := require.New(t)

		mockPresence.EXPECT().Exists("carol").Return(false).Times(1)
		mockPresence.EXPECT().Join("carol").Times(1)
		mockEvents.EXPECT().Publish(eventMatcher{kind: domain.EventUserJoined, user: "carol"}).Return(0).Times(1)

		req.True(uc.EnsureJoined("carol"))
	})

	t.Run("should leave an online user untouched", func(t *testing.T) {
		req := require.New(t)

		mockPresence.EXPECT().Exists("carol").Return(true).Times(1)
		mockPresence.EXPECT().Join(gomock.Any()).Times(0)

		req.False(uc.EnsureJoined("carol"))
	})
}

func TestUsecase_Leave(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresence := mocks.NewMockPresenceRepository(ctrl)
	mockEvents := mocks.NewMockEventPublisher(ctrl)
	uc := NewUsecase(mockPresence, mockEvents, zerolog.Nop())

	t.Run("should remove and announce even when the user is absent", func(t *testing.T) {
		gomock.InOrder(
			mockPresence.EXPECT().Leave("ghost").Times(1),
			mockEvents.EXPECT().Publish(eventMatcher{kind: domain.EventUserLeft, user: "ghost"}).Return(0).Times(1),
		)

		uc.Leave("ghost")
	})
}

func TestUsecase_SendMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresence := mocks.NewMockPresenceRepository(ctrl)
	mockEvents := mocks.NewMockEventPublisher(ctrl)
	uc := NewUsecase(mockPresence, mockEvents, zerolog.Nop())

	t.Run("should publish a message event", func(t *testing.T) {
		req := require.New(t)

		mockEvents.EXPECT().
			Publish(eventMatcher{kind: domain.EventMessage, user: "alice", message: "hi"}).
			Return(2).
			Times(1)

		req.True(uc.SendMessage("alice", "hi"))
	})

	t.Run("should skip empty text", func(t *testing.T) {
		req := require.New(t)

		mockEvents.EXPECT().Publish(gomock.Any()).Times(0)

		req.False(uc.SendMessage("alice", ""))
	})
}

func TestUsecase_Queries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPresence := mocks.NewMockPresenceRepository(ctrl)
	uc := NewUsecase(mockPresence, mocks.NewMockEventPublisher(ctrl), zerolog.Nop())

	t.Run("should delegate to the roster", func(t *testing.T) {
		req := require.New(t)

		mockPresence.EXPECT().Exists("bob").Return(true).Times(1)
		mockPresence.EXPECT().List().Return([]string{"alice", "bob"}).Times(1)

		req.True(uc.DoesUserExist("bob"))
		req.Equal([]string{"alice", "bob"}, uc.ListUsers())
	})
}

type eventMatcher struct {
	kind    domain.EventKind
	user    string
	message string
}

func (m eventMatcher) Matches(x any) bool {
	e, ok := x.(domain.Event)
	return ok && e.Kind == m.kind && e.User == m.user && e.Message == m.message
}

func (m eventMatcher) String() string {
	return "is " + m.kind.String() + " event for " + m.user
}
