package character

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCharacter(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "character.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write character file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCharacter(t, `{
		"name": "Miko",
		"gender": "female",
		"age": "19",
		"personality": "cheerful, a little mischievous",
		"speech_style": {
			"first_person": ["Miko"],
			"sentence_endings": ["~", "!"],
			"common_phrases": ["Ehehe"],
			"emoji_usage": "frequent"
		},
		"background": "A streamer who chats with her viewers every night.",
		"behavior_rules": ["Never break character."]
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Name != "Miko" {
		t.Errorf("name = %q, want Miko", c.Name)
	}
	if c.SpeechStyle.EmojiUsage != EmojiFrequent {
		t.Errorf("emoji usage = %q, want frequent", c.SpeechStyle.EmojiUsage)
	}
	if len(c.BehaviorRules) != 1 {
		t.Errorf("behavior rules = %d, want 1", len(c.BehaviorRules))
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeCharacter(t, `{"name": "Plain"}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SpeechStyle.EmojiUsage != EmojiMinimal {
		t.Errorf("emoji usage defaulted to %q, want minimal", c.SpeechStyle.EmojiUsage)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	path := writeCharacter(t, `{"personality": "nameless"}`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a missing name")
	}
}

func TestLoadRejectsUnknownEmojiUsage(t *testing.T) {
	path := writeCharacter(t, `{"name": "X", "speech_style": {"emoji_usage": "constant"}}`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an unknown emoji_usage")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := writeCharacter(t, `{"name": `)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default character invalid: %v", err)
	}
}
