package cmd

import (
	"testing"
	"time"

	"github.com/c-bata/go-prompt"
	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/stretchr/testify/require"
)

func TestFormatEvent(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event pb.Event
		want  string
	}{
		{"message", pb.Event{Kind: "message", User: "bob", Message: "hi"}, "[12:30:00] bob: hi"},
		{"join", pb.Event{Kind: "user-joined", User: "bob"}, "[12:30:00] bob joined"},
		{"leave", pb.Event{Kind: "user-left", User: "bob"}, "[12:30:00] bob left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatEvent(tt.event, at, false))
		})
	}

	t.Run("should neutralize terminal control characters", func(t *testing.T) {
		req := require.New(t)

		got := formatEvent(pb.Event{Kind: "message", User: "bob", Message: "\x1b[2Jgone\rfake"}, at, false)
		req.Equal("[12:30:00] bob: \uFFFD[2Jgone fake", got)

		got = formatEvent(pb.Event{Kind: "user-joined", User: "eve\n[12:30:00] root"}, at, false)
		req.Equal("[12:30:00] eve [12:30:00] root joined", got)
		req.NotContains(formatEvent(pb.Event{Kind: "message", User: "bob", Message: "\x07\x1b]0;x"}, at, true), "\x1b")
	})

	t.Run("should escape color tags from users", func(t *testing.T) {
		got := formatEvent(pb.Event{Kind: "message", User: "bob", Message: "[red]x"}, at, true)
		require.Contains(t, got, "[red[]x")
	})
}

func TestReplCompleter(t *testing.T) {
	req := require.New(t)

	buf := prompt.NewBuffer()
	buf.InsertText("jo", false, true)
	suggestions := replCompleter(*buf.Document())

	req.NotEmpty(suggestions)
	req.Equal("join", suggestions[0].Text)

	buf = prompt.NewBuffer()
	buf.InsertText("echo hel", false, true)
	req.Empty(replCompleter(*buf.Document()))
}
