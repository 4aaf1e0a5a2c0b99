package domain

import "github.com/pkg/errors"

var (
	ErrExpired          = errors.New("expired")
	ErrInvalidData      = errors.New("invalid data")
	ErrIssuerMismatch   = errors.New("issuer mismatch")
	ErrCacheUnavailable = errors.New("cache unavailable")
)
