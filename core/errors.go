package session

import "errors"

var (
	// ErrSessionActive is returned by Start while a live session already
	// exists. The caller must stop the current session first.
	ErrSessionActive = errors.New("session already active")

	// ErrNoTransport is returned by Start when no transport client was
	// configured.
	ErrNoTransport = errors.New("no transport configured")

	// ErrNoAudioDevice is returned by Start when input or output audio
	// clients are missing.
	ErrNoAudioDevice = errors.New("no audio device configured")
)

// PermissionError reports that the microphone or an audio device context
// could not be acquired. The session returns to idle; no retry is
// performed.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return "audio device access denied: " + e.Err.Error()
}

func (e *PermissionError) Unwrap() error { return e.Err }
