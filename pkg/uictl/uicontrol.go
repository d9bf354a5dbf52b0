// Package uictl defines read-only controls a presentation layer can poll
// while a long-running operation is in progress.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial is a control that can read some value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial with a maximum cap value.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// Levels is a control that can read multiple levels, oldest first.
type Levels[N Number] interface {
	Read() []N
}

// Fraction returns how far a capped dial is towards its cap, clamped to
// [0, 1]. A non-positive cap reads as 0.
func Fraction[N Number](d CappedDial[N]) float64 {
	num, maxValue := d.Cap()
	if maxValue <= 0 {
		return 0
	}

	return min(max(float64(num)/float64(maxValue), 0), 1)
}
