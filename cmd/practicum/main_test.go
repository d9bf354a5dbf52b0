package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizCmd_PassFirstTime(t *testing.T) {
	var out bytes.Buffer
	cmd := &QuizCmd{Variant: "content"}

	err := cmd.run(strings.NewReader("b\nc\nc\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Knowledge check: Rigorous Content")
	assert.Contains(t, out.String(), "Quiz completed!")
}

func TestQuizCmd_RetryKeepsAnswers(t *testing.T) {
	var out bytes.Buffer
	cmd := &QuizCmd{Variant: "discourse"}

	// First pass: bogus option, then one wrong answer. Second pass keeps
	// q1 and q2 with empty input and fixes q3.
	input := "x\nb\nc\na\n\n\nc\n"
	err := cmd.run(strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"x" is not an option`)
	assert.Contains(t, out.String(), workflow.IncorrectAnswerMessage)
	assert.Contains(t, out.String(), "answer [b]: ")
	assert.Contains(t, out.String(), "Quiz completed!")
}

func TestQuizCmd_EOF(t *testing.T) {
	cmd := &QuizCmd{}

	err := cmd.run(strings.NewReader("b\n"), io.Discard)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestVariantsCmd(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, (&VariantsCmd{}).run(&out))
	assert.Contains(t, out.String(), "* discourse")
	assert.Contains(t, out.String(), "Supportive Learning Environment")
	assert.Equal(t, 4, strings.Count(out.String(), "\n  "))
}

func TestMeter(t *testing.T) {
	assert.Equal(t, "[    ]", meter(fixedLevels{}, 4))
	assert.Equal(t, "[####]", meter(fixedLevels{32767}, 4))
	assert.Equal(t, "[##  ]", meter(fixedLevels{-16384}, 4))
}

type fixedLevels []int16

func (f fixedLevels) Read() []int16 { return f }

type stubSession struct {
	stopErr  error
	err      error
	artifact *capture.Artifact
}

func (s *stubSession) Stop() error                 { return s.stopErr }
func (s *stubSession) Err() error                  { return s.err }
func (s *stubSession) Artifact() *capture.Artifact { return s.artifact }

func TestSaveRecording(t *testing.T) {
	t.Parallel()

	noAudio := &capture.FinalizeError{Err: capture.ErrNoAudio}
	lost := &capture.DeviceAccessError{Err: capture.ErrStreamLost}

	tests := []struct {
		name        string
		session     *stubSession
		expectedErr error
		expectedOut string
	}{
		{
			name: "saved",
			session: &stubSession{artifact: &capture.Artifact{
				Data:      []byte{1, 2, 3},
				Duration:  1500 * time.Millisecond,
				Truncated: true,
			}},
			expectedOut: "(1.5s, 3 bytes)",
		},
		{
			name:        "no audio",
			session:     &stubSession{stopErr: noAudio, err: noAudio},
			expectedErr: capture.ErrNoAudio,
			expectedOut: "No audio was captured. Please try recording again.",
		},
		{
			name:        "stream lost before stop",
			session:     &stubSession{stopErr: capture.ErrActionUnavailable, err: lost},
			expectedErr: capture.ErrStreamLost,
			expectedOut: capture.DeviceAccessMessage,
		},
		{
			name:        "no session error",
			session:     &stubSession{stopErr: capture.ErrSessionClosed},
			expectedErr: capture.ErrSessionClosed,
			expectedOut: capture.ErrSessionClosed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			output := filepath.Join(t.TempDir(), "practice.mp3")
			var out bytes.Buffer

			err := saveRecording(&out, tt.session, output)
			assert.Contains(t, out.String(), tt.expectedOut)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.NoFileExists(t, output)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, out.String(), "truncated")
			data, err := os.ReadFile(output)
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, data)
		})
	}
}
