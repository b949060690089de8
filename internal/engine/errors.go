package engine

import "errors"

var (
	// ErrSessionNotFound is returned when no active context exists for a session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateSession is returned when creating a context for an id that is already active.
	ErrDuplicateSession = errors.New("session already active")

	// ErrInvalidStageTransition is returned for a disallowed stage change; state is left untouched.
	ErrInvalidStageTransition = errors.New("invalid stage transition")

	// ErrPersistence wraps summary save failures. The computed summary is
	// still returned to the caller so no work is lost; retrying the save
	// alone is safe because summaries are immutable.
	ErrPersistence = errors.New("persistence failure")
)
