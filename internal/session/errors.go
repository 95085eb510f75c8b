package session

import "errors"

var (
	// ErrUnauthenticated means no principal could be resolved for an
	// identity-bound operation.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredential means the freshly supplied password failed
	// verification. Nothing has been mutated when it is returned.
	ErrInvalidCredential = errors.New("the provided password is incorrect")
)
