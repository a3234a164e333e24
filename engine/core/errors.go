package core

import (
	"errors"
)

var (
	ErrInvalidHandle      = errors.New("invalid handle")
	ErrResourceExhausted  = errors.New("resource exhausted")
	ErrContextLost        = errors.New("graphics context lost")
	ErrUnknown            = errors.New("unknown")
)
