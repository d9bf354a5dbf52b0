package workflow

// Flag names a completion flag.
type Flag string

const (
	FlagVideoCompleted    Flag = "videoCompleted"
	FlagReadingCompleted  Flag = "readingCompleted"
	FlagQuizCompleted     Flag = "quizCompleted"
	FlagFeedbackReceived  Flag = "feedbackReceived"
	FlagGoalSet           Flag = "goalSet"
	FlagRecordingCaptured Flag = "recordingCaptured"
)

// Tracker holds the completion flags of one phase instance. Flags only
// ever go from false to true. Not safe for concurrent use; the owning
// phase serializes access.
type Tracker struct {
	order []Flag
	done  map[Flag]bool
}

// NewTracker creates a tracker with every flag false.
func NewTracker(flags ...Flag) *Tracker {
	done := make(map[Flag]bool, len(flags))
	for _, f := range flags {
		done[f] = false
	}

	return &Tracker{order: flags, done: done}
}

// Mark sets f and reports whether this call flipped it. Unknown flags are
// ignored.
func (t *Tracker) Mark(f Flag) bool {
	done, ok := t.done[f]
	if !ok || done {
		return false
	}

	t.done[f] = true

	return true
}

// Done reports whether f is set.
func (t *Tracker) Done(f Flag) bool {
	return t.done[f]
}

// All reports whether every tracked flag is set.
func (t *Tracker) All() bool {
	for _, f := range t.order {
		if !t.done[f] {
			return false
		}
	}

	return true
}

// Flags returns a copy of the flag vector.
func (t *Tracker) Flags() map[Flag]bool {
	out := make(map[Flag]bool, len(t.done))
	for f, v := range t.done {
		out[f] = v
	}

	return out
}
