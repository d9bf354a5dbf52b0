// Package catalog holds the static reference data behind the learn and
// practice phases: variants, the instructional video, readings, the quiz
// and the canned feedback text for each variant.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Option is a single answer choice of a quiz question.
type Option struct {
	ID   string `yaml:"id"   json:"id"`
	Text string `yaml:"text" json:"text"`
}

// Question is a static quiz question. The correct option never leaves the
// server.
type Question struct {
	ID              string   `yaml:"id"      json:"id"`
	Prompt          string   `yaml:"prompt"  json:"prompt"`
	Options         []Option `yaml:"options" json:"options"`
	CorrectOptionID string   `yaml:"correct" json:"-"`
}

// HasOption reports whether optionID is one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}

	return false
}

// Reading is a static reading resource.
type Reading struct {
	Title   string `yaml:"title"   json:"title"`
	Author  string `yaml:"author"  json:"author"`
	Link    string `yaml:"link"    json:"link"`
	Minutes int    `yaml:"minutes" json:"estimatedMinutes"`
}

// Video describes the instructional video shown on the learn phase.
type Video struct {
	URL         string `yaml:"url"         json:"url"`
	Title       string `yaml:"title"       json:"title"`
	Description string `yaml:"description" json:"description"`
}

// VariantInfo is the catalog entry for a single variant.
type VariantInfo struct {
	ID          Variant `yaml:"id"          json:"id"`
	Title       string  `yaml:"title"       json:"title"`
	Description string  `yaml:"description" json:"description"`
	Feedback    string  `yaml:"feedback"    json:"-"`
}

// Catalog is the full set of reference data.
type Catalog struct {
	DefaultVariant Variant       `yaml:"default_variant"`
	Variants       []VariantInfo `yaml:"variants"`
	Video          Video         `yaml:"video"`
	Readings       []Reading     `yaml:"readings"`
	Quiz           []Question    `yaml:"quiz"`
	Scenario       string        `yaml:"scenario"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	if !c.DefaultVariant.Known() {
		return fmt.Errorf("unknown default variant %q", c.DefaultVariant)
	}

	for _, v := range Variants() {
		info, ok := c.Variant(v)
		if !ok {
			return fmt.Errorf("variant %q missing", v)
		}
		if info.Feedback == "" {
			return fmt.Errorf("variant %q has no feedback text", v)
		}
	}

	if len(c.Quiz) == 0 {
		return errors.New("quiz has no questions")
	}

	seen := make(map[string]struct{}, len(c.Quiz))
	for _, q := range c.Quiz {
		if q.ID == "" {
			return errors.New("quiz question without id")
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate quiz question %q", q.ID)
		}
		seen[q.ID] = struct{}{}

		options := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if _, dup := options[o.ID]; dup {
				return fmt.Errorf("question %q: duplicate option %q", q.ID, o.ID)
			}
			options[o.ID] = struct{}{}
		}

		if !q.HasOption(q.CorrectOptionID) {
			return fmt.Errorf("question %q: correct option %q is not an option", q.ID, q.CorrectOptionID)
		}
	}

	return nil
}

// Variant returns the catalog entry for v.
func (c *Catalog) Variant(v Variant) (VariantInfo, bool) {
	for _, info := range c.Variants {
		if info.ID == v {
			return info, true
		}
	}

	return VariantInfo{}, false
}

// Feedback returns the canned feedback text for v.
func (c *Catalog) Feedback(v Variant) string {
	info, ok := c.Variant(v)
	if !ok {
		info, _ = c.Variant(c.DefaultVariant)
	}

	return info.Feedback
}

// VideoFor returns the instructional video with its title filled in for v.
func (c *Catalog) VideoFor(v Variant) Video {
	video := c.Video
	video.Title = fmt.Sprintf(video.Title, v.Title())

	return video
}

// Question looks up a quiz question by id.
func (c *Catalog) Question(id string) (Question, bool) {
	for _, q := range c.Quiz {
		if q.ID == id {
			return q, true
		}
	}

	return Question{}, false
}
