package adaptor

import (
	"context"

	"github.com/ponyo877/livechat/server/domain"
)

type Usecase interface {
	Join(user string) error
	Leave(user string)
	SendMessage(user, message string) bool
	DoesUserExist(user string) bool
	ListUsers() []string
}

type StreamUsecase interface {
	HandleStreamSession(ctx context.Context, user, remote string, sink domain.EventSink) error
	GetStreamStats() domain.StreamStats
}
