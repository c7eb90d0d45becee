package domain

import "errors"

// Expected storage outcomes. Handlers map these to user-facing responses.
var (
	ErrDuplicateUsername = errors.New("duplicate-username")
	ErrUserNotFound      = errors.New("user-not-found")
	ErrRoomNotFound      = errors.New("room-not-found")
	ErrGameNotFound      = errors.New("game-not-found")
)

// Unexpected errors wrap the underlying cause with %w so the original error
// stays inspectable while callers can still switch on the category.
var (
	UnexpectedDatabaseError               = errors.New("unexpected-database-error")
	UnexpectedPasswordHashingError        = errors.New("unexpected-password-hashing-error")
	UnexpectedPasswordHashComparisonError = errors.New("unexpected-password-hash-comparison-error")
	UnexpectedTokenGenerationError        = errors.New("unexpected-token-generation-error")
	UnexpectedTokenVerificationError      = errors.New("unexpected-token-verification-error")
)

// Token verification errors
var (
	ErrInvalidSigningAlg     = errors.New("invalid-signing-alg")
	ErrExpiredToken          = errors.New("expired-token")
	ErrInvalidTokenSignature = errors.New("invalid-token-signature")
	ErrCorruptedToken        = errors.New("corrupted-token")
)
