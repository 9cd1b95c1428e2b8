// Package character loads and validates typed character configuration.
// The memory core never inspects these fields; a character travels as an
// opaque value to whichever generation capability the host wires in.
package character

import (
	"encoding/json"
	"fmt"
	"os"
)

// Emoji usage levels accepted in a character file.
const (
	EmojiMinimal  = "minimal"
	EmojiModerate = "moderate"
	EmojiFrequent = "frequent"
)

// SpeechStyle describes how a character talks.
type SpeechStyle struct {
	FirstPerson     []string `json:"first_person"`
	SentenceEndings []string `json:"sentence_endings"`
	CommonPhrases   []string `json:"common_phrases"`
	EmojiUsage      string   `json:"emoji_usage"`
}

// Character is the validated personality configuration.
type Character struct {
	Name          string      `json:"name"`
	Gender        string      `json:"gender"`
	Age           string      `json:"age"`
	Personality   string      `json:"personality"`
	SpeechStyle   SpeechStyle `json:"speech_style"`
	Background    string      `json:"background"`
	BehaviorRules []string    `json:"behavior_rules"`
}

// Load reads a character from a JSON file, applies defaults, and
// validates it.
func Load(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character file: %w", err)
	}

	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse character file: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the fallback character used when no file is
// configured.
func Default() *Character {
	return &Character{
		Name:        "Assistant",
		Gender:      "neutral",
		Age:         "unknown",
		Personality: "kind and eager to help",
		SpeechStyle: SpeechStyle{
			FirstPerson:     []string{"I"},
			SentenceEndings: []string{},
			CommonPhrases:   []string{"Of course.", "Happy to help."},
			EmojiUsage:      EmojiMinimal,
		},
		Background: "An AI built to support its user.",
		BehaviorRules: []string{
			"Answer questions politely.",
			"Prefer clear, simple explanations.",
		},
	}
}

func (c *Character) applyDefaults() {
	if c.SpeechStyle.EmojiUsage == "" {
		c.SpeechStyle.EmojiUsage = EmojiMinimal
	}
}

// Validate checks required fields and enum values.
func (c *Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("character: name is required")
	}
	switch c.SpeechStyle.EmojiUsage {
	case EmojiMinimal, EmojiModerate, EmojiFrequent:
	default:
		return fmt.Errorf("character: unknown emoji_usage %q", c.SpeechStyle.EmojiUsage)
	}
	return nil
}
