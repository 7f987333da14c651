package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ReservedUserName  = "system"
	MaxUserNameLength = 20
)

func IsReservedName(name string) bool {
	return strings.EqualFold(name, ReservedUserName)
}

// SameUser reports whether two display names collide on join.
func SameUser(a, b string) bool {
	return strings.EqualFold(a, b)
}

// IsPrintableName reports whether name is valid UTF-8 without control
// characters. Names are written verbatim into event frames.
func IsPrintableName(name string) bool {
	if !utf8.ValidString(name) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}
