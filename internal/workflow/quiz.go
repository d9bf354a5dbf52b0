package workflow

import (
	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/pkg/collections"
)

func answeredIn(answers map[string]string) func(catalog.Question) bool {
	return func(q catalog.Question) bool {
		_, ok := answers[q.ID]
		return ok
	}
}

// AllAnswered reports whether every question has a selection. An empty
// question set is never answered.
func AllAnswered(questions []catalog.Question, answers map[string]string) bool {
	return collections.All(questions, answeredIn(answers))
}

// ValidateAnswers checks answers against the answer key. It returns a
// *ValidationError if any question is unanswered and an
// *IncorrectAnswerError if any selection is wrong. There is no partial
// credit. answers is never modified.
func ValidateAnswers(questions []catalog.Question, answers map[string]string) error {
	if !AllAnswered(questions, answers) {
		return &ValidationError{
			Field:   "answers",
			Minimum: len(questions),
			Actual:  len(collections.Filter(questions, answeredIn(answers))),
			Message: "Please answer all questions before checking.",
		}
	}

	correct := collections.All(questions, func(q catalog.Question) bool {
		return answers[q.ID] == q.CorrectOptionID
	})
	if !correct {
		return &IncorrectAnswerError{Questions: len(questions)}
	}

	return nil
}

// Passed reports whether answers pass the quiz.
func Passed(questions []catalog.Question, answers map[string]string) bool {
	return ValidateAnswers(questions, answers) == nil
}
