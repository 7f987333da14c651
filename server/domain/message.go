package domain

import "strings"

const MaxMessageLength = 256

type ChatMessage struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

func NewChatMessage(user, message string) ChatMessage {
	return ChatMessage{
		User:    user,
		Message: message,
	}
}

// TruncateMessage replaces invalid UTF-8 and cuts text to at most max runes.
func TruncateMessage(text string, max int) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	if max < 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}
