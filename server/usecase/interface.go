//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=mocks/mock_interface.go -package=mocks
package usecase

import "github.com/ponyo877/livechat/server/domain"

type PresenceRepository interface {
	Join(user string)
	Leave(user string)
	Exists(user string) bool
	List() []string
}

type EventPublisher interface {
	Publish(event domain.Event) int
}
