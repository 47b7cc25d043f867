package triage

import "errors"

var (
	// ErrQueueEmpty is returned by ServeNext when nobody is waiting.
	ErrQueueEmpty = errors.New("triage: no patients in the queue")

	// ErrInvalidName is returned when the patient name is blank.
	ErrInvalidName = errors.New("triage: patient name is required")

	// ErrInvalidUrgency is returned when urgency falls outside the desk's range.
	ErrInvalidUrgency = errors.New("triage: urgency out of range")

	// ErrNotFound is returned for an arrival sequence that is not waiting.
	ErrNotFound = errors.New("triage: admission not found")

	// ErrDuplicateSequence is returned by Restore when two records share a sequence.
	ErrDuplicateSequence = errors.New("triage: duplicate arrival sequence")
)
