package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/neurochat/neurochat/character"
	"github.com/neurochat/neurochat/memory"
	"github.com/neurochat/neurochat/memory/embedder/mock"
	"github.com/neurochat/neurochat/memory/store/chromem"
)

const testDims = 8

func newTestBot(t *testing.T, opts ...Option) *Bot {
	t.Helper()
	store, err := chromem.New(chromem.Config{Dimensions: testDims})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	cfg := memory.DefaultConfig()
	cfg.Dimensions = testDims
	cfg.MinSimilarity = 0
	mgr, err := memory.NewManager(store, mock.New(testDims), cfg)
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return New(mgr, nil, opts...)
}

func TestChatCommitsBothTurns(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, WithGenerator(GeneratorFunc(
		func(ctx context.Context, ch *character.Character, rc *memory.RankedContext, msg string) (string, error) {
			return "hello back", nil
		})))

	reply, err := b.Chat(ctx, "alice", "hello")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q", reply)
	}

	history := b.Memory().History("alice")
	if len(history) != 2 {
		t.Fatalf("expected 2 buffered turns, got %d", len(history))
	}
	if history[0].Role != memory.RoleUser || history[0].Text != "hello" {
		t.Errorf("first turn = %s %q", history[0].Role, history[0].Text)
	}
	if history[1].Role != memory.RoleAssistant || history[1].Text != "hello back" {
		t.Errorf("second turn = %s %q", history[1].Role, history[1].Text)
	}
}

func TestChatPassesContextToGenerator(t *testing.T) {
	ctx := context.Background()
	var got *memory.RankedContext
	b := newTestBot(t, WithGenerator(GeneratorFunc(
		func(ctx context.Context, ch *character.Character, rc *memory.RankedContext, msg string) (string, error) {
			got = rc
			return "ok", nil
		})))

	if _, err := b.Chat(ctx, "alice", "first message"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if _, err := b.Chat(ctx, "alice", "second message"); err != nil {
		t.Fatalf("chat: %v", err)
	}

	if got == nil {
		t.Fatal("generator never received a context")
	}
	if len(got.ShortTerm) != 2 {
		t.Errorf("second turn saw %d short-term records, want 2", len(got.ShortTerm))
	}
}

func TestChatGenerationFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, WithGenerator(GeneratorFunc(
		func(ctx context.Context, ch *character.Character, rc *memory.RankedContext, msg string) (string, error) {
			return "", errors.New("backend down")
		})))

	if _, err := b.Chat(ctx, "alice", "hello"); err == nil {
		t.Fatal("expected an error")
	}
	if got := len(b.Memory().History("alice")); got != 0 {
		t.Errorf("failed turn was committed: %d records", got)
	}
}

func TestChatWithoutGenerator(t *testing.T) {
	b := newTestBot(t)
	if _, err := b.Chat(context.Background(), "alice", "hello"); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("expected ErrNoGenerator, got %v", err)
	}
}

func TestSetCharacter(t *testing.T) {
	b := newTestBot(t)
	if b.Character().Name != "Assistant" {
		t.Errorf("default character = %q", b.Character().Name)
	}

	b.SetCharacter(&character.Character{Name: "Miko"})
	if b.Character().Name != "Miko" {
		t.Errorf("character after swap = %q", b.Character().Name)
	}
}
