package capture

import (
	"errors"
	"fmt"
)

// DeviceAccessMessage is shown to the user whenever the microphone cannot
// be used.
const DeviceAccessMessage = "Error accessing your microphone. Please ensure it is properly " +
	"connected and you have granted the necessary permissions."

var (
	// ErrActionUnavailable is returned when an action is not exposed from
	// the session's current state.
	ErrActionUnavailable = errors.New("capture action unavailable in current state")
	// ErrSessionClosed is returned by every action after Close.
	ErrSessionClosed = errors.New("capture session closed")
	// ErrStreamLost means the device stream ended while recording.
	ErrStreamLost = errors.New("device stream ended unexpectedly")
	// ErrNoAudio means a recording was stopped before any audio arrived.
	ErrNoAudio = errors.New("no audio captured")
)

// DeviceAccessError reports a denied or unavailable microphone.
type DeviceAccessError struct {
	Err error
}

func (e *DeviceAccessError) Error() string {
	return fmt.Sprintf("microphone unavailable: %v", e.Err)
}

func (e *DeviceAccessError) Unwrap() error { return e.Err }

// UserMessage is the text the presentation layer should display.
func (e *DeviceAccessError) UserMessage() string {
	return DeviceAccessMessage
}

// FinalizeError reports a recording that could not be turned into an
// artifact. The device has already been released when this is returned.
type FinalizeError struct {
	Err error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("failed to finalize recording: %v", e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }

// UserMessage is the text the presentation layer should display.
func (e *FinalizeError) UserMessage() string {
	if errors.Is(e.Err, ErrNoAudio) {
		return "No audio was captured. Please try recording again."
	}

	return "Your recording could not be saved. Please try recording again."
}
