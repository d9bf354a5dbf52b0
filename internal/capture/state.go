package capture

import "fmt"

// State is the lifecycle state of a capture session.
type State int

const (
	// Idle holds nothing and can start a recording.
	Idle State = iota
	// Requesting waits on the device layer for a stream.
	Requesting
	// Recording holds the device stream and buffers chunks.
	Recording
	// Stopped holds a finished artifact and no device.
	Stopped
	// Error holds a user-facing failure until acknowledged.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for st := Idle; st <= Error; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}

	return fmt.Errorf("unknown capture state %q", text)
}
