package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/alkime/practicum/internal/catalog"
	"github.com/google/uuid"
)

// LearnTabs are the learn phase tabs in display order.
var LearnTabs = []Tab{TabVideo, TabReading, TabQuiz}

// Learn is the state of one learn phase visit: video, readings and quiz.
type Learn struct {
	id      string
	variant catalog.Variant
	catalog *catalog.Catalog
	logger  *slog.Logger

	mu        sync.Mutex
	activeTab Tab
	tracker   *Tracker
	answers   map[string]string
	notice    string
	closed    bool
}

// NewLearn enters the learn phase with every flag false.
func NewLearn(c *catalog.Catalog, variant catalog.Variant, logger *slog.Logger) *Learn {
	if !variant.Known() {
		variant = c.DefaultVariant
	}

	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()

	return &Learn{
		id:        id,
		variant:   variant,
		catalog:   c,
		logger:    logger.With("phase", PhaseLearn, "instance", id, "variant", variant),
		activeTab: TabVideo,
		tracker:   NewTracker(FlagVideoCompleted, FlagReadingCompleted, FlagQuizCompleted),
		answers:   make(map[string]string),
	}
}

func (l *Learn) ID() string               { return l.id }
func (l *Learn) Phase() Phase             { return PhaseLearn }
func (l *Learn) Variant() catalog.Variant { return l.variant }

// SelectTab switches tabs. Always permitted regardless of completion.
func (l *Learn) SelectTab(tab Tab) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if !hasTab(LearnTabs, tab) {
		return fmt.Errorf("learn tab %q: %w", tab, ErrUnknownTab)
	}

	l.activeTab = tab

	return nil
}

// ReportVideoProgress records the playback position. The video completes
// once position reaches duration. Returns whether the video is complete.
func (l *Learn) ReportVideoProgress(position, duration float64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrClosed
	}

	if duration > 0 && position >= duration {
		if l.tracker.Mark(FlagVideoCompleted) {
			l.logger.Info("video completed")
		}
	}

	return l.tracker.Done(FlagVideoCompleted), nil
}

// MarkReadingComplete acknowledges all readings with one action.
func (l *Learn) MarkReadingComplete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if l.tracker.Mark(FlagReadingCompleted) {
		l.logger.Info("reading completed")
	}

	return nil
}

// SelectAnswer records optionID for questionID. Answers are frozen once
// the quiz is passed.
func (l *Learn) SelectAnswer(questionID, optionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if l.tracker.Done(FlagQuizCompleted) {
		return fmt.Errorf("select answer after quiz passed: %w", ErrActionUnavailable)
	}

	q, ok := l.catalog.Question(questionID)
	if !ok {
		return fmt.Errorf("question %q: %w", questionID, ErrInvalidAnswer)
	}

	if !q.HasOption(optionID) {
		return fmt.Errorf("question %q option %q: %w", questionID, optionID, ErrInvalidAnswer)
	}

	l.answers[questionID] = optionID

	return nil
}

// CanCheckAnswers reports whether every question has a selection.
func (l *Learn) CanCheckAnswers() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.canCheck()
}

func (l *Learn) canCheck() bool {
	return !l.closed && !l.tracker.Done(FlagQuizCompleted) && AllAnswered(l.catalog.Quiz, l.answers)
}

// CheckAnswers validates the selections. A partially answered quiz returns
// a *ValidationError without touching any state. A wrong selection
// returns false and leaves the answers in place for correction.
func (l *Learn) CheckAnswers() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrClosed
	}

	if l.tracker.Done(FlagQuizCompleted) {
		return true, nil
	}

	err := ValidateAnswers(l.catalog.Quiz, l.answers)
	if err == nil {
		l.tracker.Mark(FlagQuizCompleted)
		l.notice = ""
		l.logger.Info("quiz passed")

		return true, nil
	}

	var incorrect *IncorrectAnswerError
	if errors.As(err, &incorrect) {
		l.notice = incorrect.UserMessage()
		l.logger.Info("quiz not passed")

		return false, nil
	}

	return false, err
}

// CanProceed reports whether video, reading and quiz are all complete.
func (l *Learn) CanProceed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.closed && l.tracker.All()
}

// Proceed performs the transition to practice. It reports false, and does
// nothing, while the gate is closed. A successful proceed closes the
// instance.
func (l *Learn) Proceed() (Transition, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || !l.tracker.All() {
		return Transition{}, false
	}

	l.closed = true
	t := transitionFrom(PhaseLearn, l.variant)
	l.logger.Info("phase transition", "transition", t)

	return t, true
}

// Close discards the instance. Idempotent.
func (l *Learn) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true

	return nil
}

// LearnFlags is the learn phase completion vector.
type LearnFlags struct {
	VideoCompleted   bool `json:"videoCompleted"`
	ReadingCompleted bool `json:"readingCompleted"`
	QuizCompleted    bool `json:"quizCompleted"`
}

// LearnSnapshot is the read-only view handed to the presentation layer.
type LearnSnapshot struct {
	ID              string             `json:"id"`
	Phase           Phase              `json:"phase"`
	Variant         catalog.Variant    `json:"variant"`
	VariantTitle    string             `json:"variantTitle"`
	ActiveTab       Tab                `json:"activeTab"`
	Tabs            []Tab              `json:"tabs"`
	Flags           LearnFlags         `json:"flags"`
	SelectedAnswers map[string]string  `json:"selectedAnswers"`
	Notice          string             `json:"notice,omitempty"`
	Actions         []Action           `json:"actions"`
	Video           catalog.Video      `json:"video"`
	Readings        []catalog.Reading  `json:"readings"`
	Questions       []catalog.Question `json:"questions"`
}

// Snapshot captures the current view.
func (l *Learn) Snapshot() LearnSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LearnSnapshot{
		ID:           l.id,
		Phase:        PhaseLearn,
		Variant:      l.variant,
		VariantTitle: l.variant.Title(),
		ActiveTab:    l.activeTab,
		Tabs:         LearnTabs,
		Flags: LearnFlags{
			VideoCompleted:   l.tracker.Done(FlagVideoCompleted),
			ReadingCompleted: l.tracker.Done(FlagReadingCompleted),
			QuizCompleted:    l.tracker.Done(FlagQuizCompleted),
		},
		SelectedAnswers: maps.Clone(l.answers),
		Notice:          l.notice,
		Actions:         l.actions(),
		Video:           l.catalog.VideoFor(l.variant),
		Readings:        l.catalog.Readings,
		Questions:       l.catalog.Quiz,
	}
}

func (l *Learn) actions() []Action {
	if l.closed {
		return []Action{}
	}

	actions := []Action{ActionSelectTab}

	if !l.tracker.Done(FlagVideoCompleted) {
		actions = append(actions, ActionReportVideoProgress)
	}

	if !l.tracker.Done(FlagReadingCompleted) {
		actions = append(actions, ActionMarkReadingComplete)
	}

	if !l.tracker.Done(FlagQuizCompleted) {
		actions = append(actions, ActionSelectAnswer)
	}

	if l.canCheck() {
		actions = append(actions, ActionCheckAnswers)
	}

	if l.tracker.All() {
		actions = append(actions, ActionProceed)
	}

	return actions
}
