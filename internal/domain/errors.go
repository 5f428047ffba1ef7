package domain

import "errors"

var (
	ErrNoToken    = errors.New("github token is not set")
	ErrBadBoolean = errors.New("unexpected boolean value")
)
