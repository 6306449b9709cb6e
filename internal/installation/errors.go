package installation

import "errors"

var (
	// ErrInvalidShape is returned for shape identifiers outside the fixed set.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrPermissionDenied marks a capture device (microphone or camera) that refused access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPlaybackBlocked is returned by a Deck that cannot start yet. Callers retry on the next
	// SwitchTrack or SetMuted rather than surfacing it.
	ErrPlaybackBlocked = errors.New("playback blocked")

	// ErrBusy is returned by App.Submit when the frame thread has not drained the queue.
	ErrBusy = errors.New("command queue full")
)
