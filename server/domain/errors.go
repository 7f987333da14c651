package domain

import "errors"

var (
	ErrConflict        = errors.New("user already exists")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionClosed   = errors.New("stream session closed")
)
