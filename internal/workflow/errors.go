package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrActionUnavailable is returned when an action is not exposed in
	// the instance's current state.
	ErrActionUnavailable = errors.New("action unavailable")
	// ErrFeedbackPending is returned when feedback is requested while an
	// earlier request has not resolved.
	ErrFeedbackPending = errors.New("feedback request already pending")
	// ErrUnknownTab is returned when selecting a tab the phase does not
	// have.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrInvalidAnswer is returned for an unknown question or option.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrClosed is returned by every action once the instance is closed.
	ErrClosed = errors.New("phase instance closed")
)

// ValidationError reports input that does not yet satisfy a minimum. The
// action stays unavailable until it does.
type ValidationError struct {
	Field   string
	Minimum int
	Actual  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: need at least %d, have %d", e.Field, e.Minimum, e.Actual)
}

// UserMessage is the inline guidance shown next to the field.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

// IncorrectAnswerError reports a fully answered quiz that did not pass.
// Which questions were wrong is deliberately not reported.
type IncorrectAnswerError struct {
	Questions int
}

func (e *IncorrectAnswerError) Error() string {
	return fmt.Sprintf("quiz not passed: %d questions checked", e.Questions)
}

// UserMessage is the prompt shown to the user to revise their answers.
func (e *IncorrectAnswerError) UserMessage() string {
	return IncorrectAnswerMessage
}

// IncorrectAnswerMessage is shown after a failed quiz check.
const IncorrectAnswerMessage = "Review your answers and try again. " +
	"Look for the concepts discussed in the video and readings."
