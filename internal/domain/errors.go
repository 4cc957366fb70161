package domain

import "errors"

var (
	// ErrUnknownStrategy signals a registry operation referencing an unregistered strategy.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrStrategyExists signals a duplicate strategy registration.
	ErrStrategyExists = errors.New("strategy already registered")
	// ErrInvalidWeight signals a fusion weight outside [0, 1].
	ErrInvalidWeight = errors.New("invalid strategy weight")
	// ErrInvalidLimit signals a non-positive recommendation limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrUserRequired signals a missing user identifier.
	ErrUserRequired = errors.New("user id is required")
	// ErrContentNotFound signals a content id that does not resolve.
	ErrContentNotFound = errors.New("content not found")
	// ErrEmbeddingNotFound signals a missing content embedding.
	ErrEmbeddingNotFound = errors.New("embedding not found")
	// ErrCacheUnavailable signals an unreachable result cache backend.
	ErrCacheUnavailable = errors.New("result cache unavailable")
	// ErrEmbeddingProvider signals a failed embedding provider call.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)
