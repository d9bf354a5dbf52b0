package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/feedback"
	"github.com/google/uuid"
)

// MinGoalLength is the minimum number of characters of a goal.
const MinGoalLength = 10

// PracticeTabs are the practice phase tabs in display order.
var PracticeTabs = []Tab{TabRecord, TabPrompt, TabGoal}

// Recorder is the capture session a practice instance drives.
type Recorder interface {
	Start() error
	Stop() error
	Reset() error
	AcknowledgeError() error
	Close() error
	State() capture.State
	Artifact() *capture.Artifact
	Snapshot() capture.Snapshot
}

// Practice is the state of one practice phase visit: a recording, a
// prompt response with feedback, and a goal.
type Practice struct {
	id        string
	variant   catalog.Variant
	catalog   *catalog.Catalog
	recorder  Recorder
	generator feedback.Generator
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// recMu serializes recorder actions against Proceed.
	recMu sync.Mutex

	mu              sync.Mutex
	activeTab       Tab
	tracker         *Tracker
	promptText      string
	feedbackPending bool
	feedbackText    string
	feedbackErr     error
	goalText        string
	closed          bool
}

// NewPractice enters the practice phase with a fresh recorder.
func NewPractice(
	c *catalog.Catalog,
	variant catalog.Variant,
	recorder Recorder,
	generator feedback.Generator,
	logger *slog.Logger,
) (*Practice, error) {
	if recorder == nil {
		return nil, errors.New("recorder cannot be nil")
	}

	if generator == nil {
		return nil, errors.New("feedback generator cannot be nil")
	}

	if !variant.Known() {
		variant = c.DefaultVariant
	}

	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	return &Practice{
		id:        id,
		variant:   variant,
		catalog:   c,
		recorder:  recorder,
		generator: generator,
		logger:    logger.With("phase", PhasePractice, "instance", id, "variant", variant),
		ctx:       ctx,
		cancel:    cancel,
		activeTab: TabRecord,
		tracker:   NewTracker(FlagFeedbackReceived, FlagGoalSet),
	}, nil
}

func (p *Practice) ID() string               { return p.id }
func (p *Practice) Phase() Phase             { return PhasePractice }
func (p *Practice) Variant() catalog.Variant { return p.variant }

// SelectTab switches tabs. Always permitted regardless of completion.
func (p *Practice) SelectTab(tab Tab) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if !hasTab(PracticeTabs, tab) {
		return fmt.Errorf("practice tab %q: %w", tab, ErrUnknownTab)
	}

	p.activeTab = tab

	return nil
}

func (p *Practice) withRecorder(fn func() error) error {
	p.recMu.Lock()
	defer p.recMu.Unlock()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return ErrClosed
	}

	return fn()
}

// StartRecording requests the microphone. Access is resolved
// asynchronously; poll Snapshot for the outcome.
func (p *Practice) StartRecording() error {
	return p.withRecorder(p.recorder.Start)
}

// StopRecording stops and finalizes the recording.
func (p *Practice) StopRecording() error {
	return p.withRecorder(p.recorder.Stop)
}

// AcknowledgeRecordingError dismisses a recording error.
func (p *Practice) AcknowledgeRecordingError() error {
	return p.withRecorder(p.recorder.AcknowledgeError)
}

// RecordAgain discards the current recording.
func (p *Practice) RecordAgain() error {
	return p.withRecorder(p.recorder.Reset)
}

// Recording returns the finished recording, if any.
func (p *Practice) Recording() (*capture.Artifact, bool) {
	if p.recorder.State() != capture.Stopped {
		return nil, false
	}

	artifact := p.recorder.Artifact()

	return artifact, artifact != nil
}

func (p *Practice) recordingCaptured() bool {
	_, ok := p.Recording()

	return ok
}

// SetPromptText replaces the prompt response. Frozen once feedback has
// been requested successfully.
func (p *Practice) SetPromptText(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.feedbackPending {
		return fmt.Errorf("edit prompt: %w", ErrFeedbackPending)
	}

	if p.tracker.Done(FlagFeedbackReceived) {
		return fmt.Errorf("edit prompt after feedback: %w", ErrActionUnavailable)
	}

	p.promptText = text

	return nil
}

// CanRequestFeedback reports whether the response is eligible and no
// request is pending or resolved.
func (p *Practice) CanRequestFeedback() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.canRequestFeedback()
}

func (p *Practice) canRequestFeedback() bool {
	return !p.closed &&
		!p.feedbackPending &&
		!p.tracker.Done(FlagFeedbackReceived) &&
		feedback.Eligible(p.promptText)
}

// RequestFeedback schedules the feedback generator. A second request
// while one is pending is rejected with ErrFeedbackPending. Resolution
// sets the feedback text, which is immutable from then on.
func (p *Practice) RequestFeedback() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.feedbackPending {
		return ErrFeedbackPending
	}

	if p.tracker.Done(FlagFeedbackReceived) {
		return fmt.Errorf("request feedback again: %w", ErrActionUnavailable)
	}

	if !feedback.Eligible(p.promptText) {
		return &ValidationError{
			Field:   "prompt",
			Minimum: feedback.MinResponseLength,
			Actual:  utf8.RuneCountInString(p.promptText),
			Message: fmt.Sprintf("Please write at least %d characters before requesting feedback.",
				feedback.MinResponseLength),
		}
	}

	p.feedbackPending = true
	p.feedbackErr = nil
	response := p.promptText

	p.logger.Info("feedback requested")

	p.wg.Go(func() {
		text, err := p.generator.Generate(p.ctx, p.variant, response)
		p.resolveFeedback(text, err)
	})

	return nil
}

func (p *Practice) resolveFeedback(text string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.feedbackPending = false

	if p.closed {
		return
	}

	if err == nil && strings.TrimSpace(text) == "" {
		err = feedback.ErrEmptyFeedback
	}

	if err != nil {
		p.feedbackErr = err
		p.logger.Warn("feedback failed", "error", err)
		return
	}

	p.feedbackText = text
	p.tracker.Mark(FlagFeedbackReceived)
	p.logger.Info("feedback received")
}

// SetGoalText replaces the goal draft. Frozen once the goal is set.
func (p *Practice) SetGoalText(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.tracker.Done(FlagGoalSet) {
		return fmt.Errorf("edit goal after it was set: %w", ErrActionUnavailable)
	}

	p.goalText = text

	return nil
}

// SubmitGoal sets the goal if the draft has at least MinGoalLength
// characters.
func (p *Practice) SubmitGoal() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.tracker.Done(FlagGoalSet) {
		return fmt.Errorf("submit goal again: %w", ErrActionUnavailable)
	}

	if n := goalLength(p.goalText); n < MinGoalLength {
		return &ValidationError{
			Field:   "goal",
			Minimum: MinGoalLength,
			Actual:  n,
			Message: fmt.Sprintf("Please enter a more detailed goal (at least %d characters).", MinGoalLength),
		}
	}

	p.tracker.Mark(FlagGoalSet)
	p.logger.Info("goal set")

	return nil
}

// goalLength ignores surrounding whitespace.
func goalLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// CanProceed reports whether a recording exists, feedback was received and
// the goal is set.
func (p *Practice) CanProceed() bool {
	captured := p.recordingCaptured()

	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.closed && captured && p.tracker.All()
}

// Proceed performs the transition to reflect. It reports false, and does
// nothing, while the gate is closed. A successful proceed closes the
// instance and releases the recorder.
func (p *Practice) Proceed() (Transition, bool) {
	p.recMu.Lock()
	captured := p.recordingCaptured()

	p.mu.Lock()
	if p.closed || !captured || !p.tracker.All() {
		p.mu.Unlock()
		p.recMu.Unlock()
		return Transition{}, false
	}
	p.closed = true
	p.mu.Unlock()
	p.recMu.Unlock()

	t := transitionFrom(PhasePractice, p.variant)
	if err := p.teardown(); err != nil {
		p.logger.Warn("failed to close practice after transition", "error", err)
	}

	p.logger.Info("phase transition", "transition", t)

	return t, true
}

// Close releases the recorder, abandons pending feedback and waits for it
// to wind down. Idempotent.
func (p *Practice) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.teardown()
}

func (p *Practice) teardown() error {
	p.cancel()
	err := p.recorder.Close()
	p.wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to close recorder: %w", err)
	}

	return nil
}

// PracticeFlags is the practice phase completion vector.
type PracticeFlags struct {
	RecordingCaptured bool `json:"recordingCaptured"`
	FeedbackReceived  bool `json:"feedbackReceived"`
	GoalSet           bool `json:"goalSet"`
}

// PracticeSnapshot is the read-only view handed to the presentation layer.
type PracticeSnapshot struct {
	ID              string           `json:"id"`
	Phase           Phase            `json:"phase"`
	Variant         catalog.Variant  `json:"variant"`
	VariantTitle    string           `json:"variantTitle"`
	ActiveTab       Tab              `json:"activeTab"`
	Tabs            []Tab            `json:"tabs"`
	Scenario        string           `json:"scenario"`
	Flags           PracticeFlags    `json:"flags"`
	Recording       capture.Snapshot `json:"recording"`
	PromptText      string           `json:"promptText"`
	FeedbackPending bool             `json:"feedbackPending"`
	FeedbackText    string           `json:"feedbackText,omitempty"`
	FeedbackError   string           `json:"feedbackError,omitempty"`
	GoalText        string           `json:"goalText"`
	Actions         []Action         `json:"actions"`
}

// Snapshot captures the current view.
func (p *Practice) Snapshot() PracticeSnapshot {
	recording := p.recorder.Snapshot()
	captured := recording.State == capture.Stopped && recording.Artifact != nil

	p.mu.Lock()
	defer p.mu.Unlock()

	snap := PracticeSnapshot{
		ID:           p.id,
		Phase:        PhasePractice,
		Variant:      p.variant,
		VariantTitle: p.variant.Title(),
		ActiveTab:    p.activeTab,
		Tabs:         PracticeTabs,
		Scenario:     p.catalog.Scenario,
		Flags: PracticeFlags{
			RecordingCaptured: captured,
			FeedbackReceived:  p.tracker.Done(FlagFeedbackReceived),
			GoalSet:           p.tracker.Done(FlagGoalSet),
		},
		Recording:       recording,
		PromptText:      p.promptText,
		FeedbackPending: p.feedbackPending,
		FeedbackText:    p.feedbackText,
		GoalText:        p.goalText,
		Actions:         p.actions(recording.State, captured),
	}

	if p.feedbackErr != nil {
		snap.FeedbackError = "Feedback could not be generated. Please try again."
	}

	return snap
}

func (p *Practice) actions(state capture.State, captured bool) []Action {
	if p.closed {
		return []Action{}
	}

	actions := []Action{ActionSelectTab}

	switch state {
	case capture.Idle:
		actions = append(actions, ActionStartRecording)
	case capture.Recording:
		actions = append(actions, ActionStopRecording)
	case capture.Stopped:
		actions = append(actions, ActionRecordAgain)
	case capture.Error:
		actions = append(actions, ActionAcknowledgeError)
	}

	if !p.feedbackPending && !p.tracker.Done(FlagFeedbackReceived) {
		actions = append(actions, ActionEditPrompt)
	}

	if p.canRequestFeedback() {
		actions = append(actions, ActionRequestFeedback)
	}

	if !p.tracker.Done(FlagGoalSet) {
		actions = append(actions, ActionEditGoal)
		if goalLength(p.goalText) >= MinGoalLength {
			actions = append(actions, ActionSubmitGoal)
		}
	}

	if captured && p.tracker.All() {
		actions = append(actions, ActionProceed)
	}

	return actions
}
