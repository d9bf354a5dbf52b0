package catalog

import "strings"

// Variant selects which practice track the user is working through.
type Variant string

const (
	// Discourse is the classroom discourse track.
	Discourse Variant = "discourse"
	// Environment is the supportive learning environment track.
	Environment Variant = "environment"
	// Content is the rigorous content track.
	Content Variant = "content"
	// Cognitive is the cognitive engagement track.
	Cognitive Variant = "cognitive"

	// DefaultVariant is used whenever a variant cannot be resolved.
	DefaultVariant = Discourse
)

// Variants returns every known variant in display order.
func Variants() []Variant {
	return []Variant{Discourse, Environment, Content, Cognitive}
}

// ParseVariant resolves a raw identifier (typically the hlp query
// parameter) to a known variant. Unknown or empty input resolves to
// DefaultVariant.
func ParseVariant(raw string) Variant {
	v := Variant(strings.ToLower(strings.TrimSpace(raw)))
	if v.Known() {
		return v
	}

	return DefaultVariant
}

// Known reports whether v is one of the known variants.
func (v Variant) Known() bool {
	switch v {
	case Discourse, Environment, Content, Cognitive:
		return true
	default:
		return false
	}
}

// Title returns the human-readable name of the practice.
func (v Variant) Title() string {
	switch v {
	case Environment:
		return "Supportive Learning Environment"
	case Content:
		return "Rigorous Content"
	case Cognitive:
		return "Cognitive Engagement"
	case Discourse:
		return "Classroom Discourse"
	default:
		return DefaultVariant.Title()
	}
}

func (v Variant) String() string {
	return string(v)
}
