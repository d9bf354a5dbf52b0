package workflow_test

import (
	"testing"

	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions() []catalog.Question {
	options := []catalog.Option{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	return []catalog.Question{
		{ID: "q1", Options: options, CorrectOptionID: "a"},
		{ID: "q2", Options: options, CorrectOptionID: "c"},
	}
}

// Every complete answer map passes iff every selection is correct.
func TestValidateAnswers_Exhaustive(t *testing.T) {
	t.Parallel()

	questions := testQuestions()
	ids := []string{"a", "b", "c"}

	for _, first := range ids {
		for _, second := range ids {
			answers := map[string]string{"q1": first, "q2": second}
			expected := first == "a" && second == "c"

			err := workflow.ValidateAnswers(questions, answers)
			assert.Equal(t, expected, err == nil, "answers %v", answers)
			assert.Equal(t, expected, workflow.Passed(questions, answers))

			if !expected {
				var incorrect *workflow.IncorrectAnswerError
				require.ErrorAs(t, err, &incorrect)
				assert.Equal(t, 2, incorrect.Questions)
			}
		}
	}
}

func TestValidateAnswers_Incomplete(t *testing.T) {
	t.Parallel()

	questions := testQuestions()

	tests := []struct {
		name    string
		answers map[string]string
		actual  int
	}{
		{name: "empty", answers: map[string]string{}, actual: 0},
		{name: "nil", answers: nil, actual: 0},
		{name: "one correct", answers: map[string]string{"q1": "a"}, actual: 1},
		{name: "unrelated key", answers: map[string]string{"q1": "a", "q3": "a"}, actual: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := len(tt.answers)
			err := workflow.ValidateAnswers(questions, tt.answers)

			var validation *workflow.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "answers", validation.Field)
			assert.Equal(t, 2, validation.Minimum)
			assert.Equal(t, tt.actual, validation.Actual)
			assert.NotEmpty(t, validation.UserMessage())
			assert.False(t, workflow.AllAnswered(questions, tt.answers))
			assert.Len(t, tt.answers, before, "answers are never modified")
		})
	}
}

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := workflow.NewTracker(workflow.FlagGoalSet, workflow.FlagFeedbackReceived)
	assert.False(t, tr.All())

	assert.True(t, tr.Mark(workflow.FlagGoalSet))
	assert.False(t, tr.Mark(workflow.FlagGoalSet), "second mark does not flip")
	assert.False(t, tr.Mark(workflow.FlagQuizCompleted), "untracked flag ignored")
	assert.False(t, tr.Done(workflow.FlagQuizCompleted))
	assert.False(t, tr.All())

	tr.Mark(workflow.FlagFeedbackReceived)
	assert.True(t, tr.All())
	assert.Equal(t, map[workflow.Flag]bool{
		workflow.FlagGoalSet:          true,
		workflow.FlagFeedbackReceived: true,
	}, tr.Flags())
}

func TestPhase_Next(t *testing.T) {
	t.Parallel()

	next, ok := workflow.PhaseLearn.Next()
	assert.True(t, ok)
	assert.Equal(t, workflow.PhasePractice, next)

	next, ok = workflow.PhasePractice.Next()
	assert.True(t, ok)
	assert.Equal(t, workflow.PhaseReflect, next)

	_, ok = workflow.PhaseReflect.Next()
	assert.False(t, ok)
}

func TestValidateAnswers_NoQuestions(t *testing.T) {
	t.Parallel()

	var validation *workflow.ValidationError
	require.ErrorAs(t, workflow.ValidateAnswers(nil, map[string]string{}), &validation)
	assert.Zero(t, validation.Minimum)
}
