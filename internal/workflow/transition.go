package workflow

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alkime/practicum/internal/catalog"
)

// Phase is a top-level stage of the workflow.
type Phase string

const (
	PhaseLearn    Phase = "learn"
	PhasePractice Phase = "practice"
	PhaseReflect  Phase = "reflect"
)

// Next returns the phase after p.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseLearn:
		return PhasePractice, true
	case PhasePractice:
		return PhaseReflect, true
	default:
		return "", false
	}
}

// Transition is a cross-phase move. Only the variant crosses the
// boundary.
type Transition struct {
	From    Phase           `json:"from"`
	To      Phase           `json:"phase"`
	Variant catalog.Variant `json:"variant"`
}

// Location is the navigation target, e.g. "/practice?hlp=discourse".
func (t Transition) Location() string {
	q := url.Values{"hlp": []string{string(t.Variant)}}

	return fmt.Sprintf("/%s?%s", t.To, q.Encode())
}

func (t Transition) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("from", string(t.From)),
		slog.String("to", string(t.To)),
		slog.String("variant", string(t.Variant)),
	)
}

func transitionFrom(from Phase, variant catalog.Variant) Transition {
	to, _ := from.Next()

	return Transition{From: from, To: to, Variant: variant}
}

// Instance is an ephemeral, phase-scoped state object.
type Instance interface {
	ID() string
	Phase() Phase
	Variant() catalog.Variant
	Close() error
}

// Tab is a sub-task within a phase.
type Tab string

const (
	TabVideo   Tab = "video"
	TabReading Tab = "reading"
	TabQuiz    Tab = "quiz"

	TabRecord Tab = "record"
	TabPrompt Tab = "prompt"
	TabGoal   Tab = "goal"
)

// Action names an operation the presentation layer may currently invoke.
type Action string

const (
	ActionSelectTab           Action = "selectTab"
	ActionReportVideoProgress Action = "reportVideoProgress"
	ActionMarkReadingComplete Action = "markReadingComplete"
	ActionSelectAnswer        Action = "selectAnswer"
	ActionCheckAnswers        Action = "checkAnswers"
	ActionStartRecording      Action = "startRecording"
	ActionStopRecording       Action = "stopRecording"
	ActionAcknowledgeError    Action = "acknowledgeRecordingError"
	ActionRecordAgain         Action = "recordAgain"
	ActionEditPrompt          Action = "editPrompt"
	ActionRequestFeedback     Action = "requestFeedback"
	ActionEditGoal            Action = "editGoal"
	ActionSubmitGoal          Action = "submitGoal"
	ActionProceed             Action = "proceed"
)

func hasTab(tabs []Tab, tab Tab) bool {
	for _, t := range tabs {
		if t == tab {
			return true
		}
	}

	return false
}
