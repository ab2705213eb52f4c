package tv

import "errors"

// Failure categories shared by the search and acquisition pipeline. Concrete
// errors wrap one of these so callers can branch with errors.Is.
var (
	ErrNetwork         = errors.New("network failure")
	ErrParse           = errors.New("malformed feed")
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrAuthFailure     = errors.New("authentication failed")
	ErrSessionExpired  = errors.New("session expired")
	ErrIO              = errors.New("filesystem failure")
	ErrUnclassifiable  = errors.New("release name could not be classified")
)
