package uictl_test

import (
	"testing"

	"github.com/alkime/practicum/pkg/uictl"
	"github.com/stretchr/testify/assert"
)

type fixedDial struct{ num, limit int64 }

func (f fixedDial) Read() int64            { return f.num }
func (f fixedDial) Cap() (num, maxV int64) { return f.num, f.limit }

func TestFraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dial     fixedDial
		expected float64
	}{
		{name: "empty", dial: fixedDial{0, 100}, expected: 0},
		{name: "half", dial: fixedDial{50, 100}, expected: 0.5},
		{name: "over cap clamps", dial: fixedDial{150, 100}, expected: 1},
		{name: "zero cap", dial: fixedDial{10, 0}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, uictl.Fraction[int64](tt.dial), 1e-9)
		})
	}
}
