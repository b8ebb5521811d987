package core

import "errors"

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrNotSigned           = errors.New("request was not signed")
	ErrRequestNotFound     = errors.New("sign request not found")
	ErrChannelClosed       = errors.New("notification channel failed")
	ErrNoAccount           = errors.New("resolved request carries no account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidLockup       = errors.New("lockup period must be at least one day")
)
