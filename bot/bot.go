// Package bot wires the memory core to its external collaborators: a
// character configuration and a text-generation capability. The bot owns
// an explicitly constructed memory.Manager passed in by the host; there
// is no ambient global memory instance.
package bot

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/neurochat/neurochat/character"
	"github.com/neurochat/neurochat/memory"
)

// ErrNoGenerator is returned by Chat when no generation capability was
// configured. The memory surface (retrieve, commit, stats, purge) works
// without one.
var ErrNoGenerator = errors.New("bot: no generator configured")

// Generator is the consumed text-generation capability. The memory core
// never calls it; only the bot does, with the ranked context the core
// produced. Implementations live outside this repository.
type Generator interface {
	Generate(ctx context.Context, ch *character.Character, rc *memory.RankedContext, userMessage string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, ch *character.Character, rc *memory.RankedContext, userMessage string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, ch *character.Character, rc *memory.RankedContext, userMessage string) (string, error) {
	return f(ctx, ch, rc, userMessage)
}

// Bot runs the per-turn flow: retrieve context, generate a reply through
// the injected capability, commit both sides of the exchange.
type Bot struct {
	manager   *memory.Manager
	generator Generator

	mu sync.RWMutex
	ch *character.Character
}

// Option configures the bot.
type Option func(*Bot)

// WithGenerator sets the text-generation capability.
func WithGenerator(g Generator) Option {
	return func(b *Bot) {
		b.generator = g
	}
}

// New creates a bot around an explicitly constructed manager.
func New(manager *memory.Manager, ch *character.Character, opts ...Option) *Bot {
	if ch == nil {
		ch = character.Default()
	}
	b := &Bot{manager: manager, ch: ch}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Character returns the active character.
func (b *Bot) Character() *character.Character {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ch
}

// SetCharacter swaps the active character, e.g. on a config reload.
func (b *Bot) SetCharacter(ch *character.Character) {
	b.mu.Lock()
	b.ch = ch
	b.mu.Unlock()
}

// Memory returns the bot's memory manager for the command surface
// (reset, stats, history, purge).
func (b *Bot) Memory() *memory.Manager {
	return b.manager
}

// Chat processes one turn for the user. Memory faults never end the
// conversation: a degraded retrieval proceeds with whatever tier
// succeeded, and commit warnings are logged. A generation failure is
// returned as-is without committing the turn.
func (b *Bot) Chat(ctx context.Context, userID string, message string) (string, error) {
	if b.generator == nil {
		return "", ErrNoGenerator
	}

	rc, err := b.manager.Retrieve(ctx, userID, message)
	if err != nil {
		return "", err
	}
	if rc.Degraded {
		log.Printf("[BOT] memory degraded for user %s, continuing without full recall", userID)
	}

	reply, err := b.generator.Generate(ctx, b.Character(), rc, message)
	if err != nil {
		return "", err
	}

	if _, warn := b.manager.Commit(ctx, userID, memory.RoleUser, message); warn != nil {
		log.Printf("[BOT] commit warning (user turn): %v", warn)
	}
	if _, warn := b.manager.Commit(ctx, userID, memory.RoleAssistant, reply); warn != nil {
		log.Printf("[BOT] commit warning (assistant turn): %v", warn)
	}
	return reply, nil
}
