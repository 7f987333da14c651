package chatpb

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// TokenMetadataKey carries the session token on authenticated calls.
const TokenMetadataKey = "authorization"

// Event is the envelope streamed by StreamEvents.
type Event struct {
	Kind    string
	User    string
	Message string
}

func (e Event) Struct() (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"event": e.Kind,
		"user":  e.User,
	}
	if e.Message != "" {
		fields["message"] = e.Message
	}
	return structpb.NewStruct(fields)
}

func EventFromStruct(s *structpb.Struct) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("nil event")
	}
	fields := s.GetFields()
	kind := fields["event"].GetStringValue()
	if kind == "" {
		return Event{}, fmt.Errorf("event kind missing")
	}
	return Event{
		Kind:    kind,
		User:    fields["user"].GetStringValue(),
		Message: fields["message"].GetStringValue(),
	}, nil
}

// Users flattens a ListUsers response.
func Users(list *structpb.ListValue) []string {
	values := list.GetValues()
	users := make([]string, 0, len(values))
	for _, v := range values {
		users = append(users, v.GetStringValue())
	}
	return users
}
