package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// errEmptyText marks a commit of a blank turn; it cannot be embedded.
var errEmptyText = errors.New("empty text")

// Config holds the memory core's tunables.
type Config struct {
	// MaxResults caps the long-term items per retrieval.
	// Default: 5.
	MaxResults int

	// ShortTermSize is the session buffer capacity.
	// Default: 5.
	ShortTermSize int

	// MinSimilarity is the minimum cosine similarity for long-term
	// candidates [0.0-1.0]. Default: 0.25, conservative enough to
	// reject near-orthogonal vectors.
	// Note: tiny local models (all-MiniLM-L6-v2) produce lower scores
	// than hosted embedders; tune per deployment.
	MinSimilarity float32

	// Dimensions declares the embedding dimension. Must match the
	// embedder in use; the mismatch is fatal at construction.
	Dimensions int

	// RetrieveTimeout bounds the embedding/query path of a retrieval.
	// On expiry the retrieval degrades to short-term-only context.
	// Default: 5s.
	RetrieveTimeout time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:      5,
		ShortTermSize:   5,
		MinSimilarity:   0.25,
		Dimensions:      384,
		RetrieveTimeout: 5 * time.Second,
	}
}

// Validate reports the first invalid field as a ConfigFault.
func (c Config) Validate() error {
	if c.MaxResults <= 0 {
		return &ConfigFault{Field: "MaxResults", Reason: "must be positive"}
	}
	if c.ShortTermSize <= 0 {
		return &ConfigFault{Field: "ShortTermSize", Reason: "must be positive"}
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return &ConfigFault{Field: "MinSimilarity", Reason: "must be within [0, 1]"}
	}
	if c.Dimensions <= 0 {
		return &ConfigFault{Field: "Dimensions", Reason: "must be positive"}
	}
	if c.RetrieveTimeout <= 0 {
		return &ConfigFault{Field: "RetrieveTimeout", Reason: "must be positive"}
	}
	return nil
}

// Manager orchestrates the two memory tiers. On each turn Commit writes
// the exchange to both tiers and Retrieve merges the short-term snapshot
// with a long-term similarity search into a single RankedContext.
//
// A single logical conversation per user is processed sequentially by
// the caller: Commit for turn N completes before Retrieve for turn N+1.
// Operations for distinct users are independent and may run
// concurrently.
type Manager struct {
	store    Store
	embedder Embedder
	config   Config
	clock    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures the manager.
type Option func(*Manager)

// WithClock sets the timestamp source. Used by tests for deterministic
// recency tie-breaks.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager creates a memory manager. An invalid config or a declared
// dimension that disagrees with the embedder is a ConfigFault and must
// abort startup.
func NewManager(store Store, embedder Embedder, config Config, opts ...Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if d := embedder.Dimensions(); d != config.Dimensions {
		return nil, &ConfigFault{
			Field:  "Dimensions",
			Reason: fmt.Sprintf("declared %d but embedder produces %d", config.Dimensions, d),
		}
	}

	m := &Manager{
		store:    store,
		embedder: embedder,
		config:   config,
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// session returns the user's session, creating it on the first turn.
func (m *Manager) session(userID string) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess
	}
	sess = NewSession(m.config.ShortTermSize, m.clock)
	m.sessions[userID] = sess
	return sess
}

// Retrieve merges the short-term snapshot with a long-term similarity
// search into a ranked context. The long-term section never exceeds
// MaxResults; the short-term section is the full buffer. Faults on the
// embedding/query path degrade silently to whatever tier succeeded and
// never block the conversation beyond RetrieveTimeout.
func (m *Manager) Retrieve(ctx context.Context, userID string, query string) (*RankedContext, error) {
	short := m.session(userID).Snapshot()

	if strings.TrimSpace(query) == "" {
		return &RankedContext{ShortTerm: short, Degraded: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.RetrieveTimeout)
	defer cancel()

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[MEMORY] embed query failed, short-term only: %v", err)
		return &RankedContext{ShortTerm: short, Degraded: true}, nil
	}

	candidates, err := m.store.Query(ctx, userID, queryVec, m.config.MaxResults)
	if err != nil {
		log.Printf("[MEMORY] long-term query failed, short-term only: %v", err)
		return &RankedContext{ShortTerm: short, Degraded: true}, nil
	}

	return rank(short, candidates, m.config.MinSimilarity, m.config.MaxResults), nil
}

// RetrieveResult delivers an asynchronous retrieval.
type RetrieveResult struct {
	Context *RankedContext
	Err     error
}

// RetrieveAsync runs Retrieve off the calling flow and delivers the
// ranked context on the returned channel, which is closed after at most
// one result. Cancelling ctx abandons the retrieval without corrupting
// buffer state; a superseding request simply cancels the stale one and
// discards its channel.
func (m *Manager) RetrieveAsync(ctx context.Context, userID string, query string) <-chan RetrieveResult {
	out := make(chan RetrieveResult, 1)
	go func() {
		defer close(out)
		rc, err := m.Retrieve(ctx, userID, query)
		select {
		case out <- RetrieveResult{Context: rc, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// Commit writes one turn to both tiers. The short-term append always
// succeeds; embedding or insert failures leave the turn short-term-only
// and are returned as a non-fatal warning wrapping an EmbeddingFault or
// StorageFault. The committed record is returned either way.
func (m *Manager) Commit(ctx context.Context, userID string, role Role, text string) (Record, error) {
	sess := m.session(userID)

	var warn error
	var embedding []float32
	if strings.TrimSpace(text) == "" {
		warn = fmt.Errorf("turn kept short-term only: %w", &EmbeddingFault{Err: errEmptyText})
	} else {
		var err error
		embedding, err = m.embedder.Embed(ctx, text)
		if err != nil {
			embedding = nil
			warn = fmt.Errorf("turn kept short-term only: %w", &EmbeddingFault{Err: err})
		}
	}

	rec := sess.Append(userID, role, text, embedding)
	if embedding == nil {
		log.Printf("[MEMORY] commit degraded for user %s: %v", userID, warn)
		return rec, warn
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		warn = fmt.Errorf("turn kept short-term only: %w", err)
		log.Printf("[MEMORY] long-term insert failed for user %s: %v", userID, err)
	}
	return rec, warn
}

// ResetSession empties the user's short-term buffer and issues a new
// conversation id. The long-term store is untouched.
func (m *Manager) ResetSession(userID string) {
	m.session(userID).Clear()
}

// Purge clears both tiers for the user. Idempotent.
func (m *Manager) Purge(ctx context.Context, userID string) error {
	m.session(userID).Clear()
	if err := m.store.DeleteAll(ctx, userID); err != nil {
		return err
	}
	log.Printf("[MEMORY] purged all data for user %s", userID)
	return nil
}

// Stats reports per-tier counts for the user.
type Stats struct {
	UserID         string
	ShortTerm      int
	LongTerm       int
	ConversationID string
}

// Stats returns the current counts for both tiers.
func (m *Manager) Stats(ctx context.Context, userID string) (Stats, error) {
	sess := m.session(userID)
	longTerm, err := m.store.Count(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		UserID:         userID,
		ShortTerm:      sess.Len(),
		LongTerm:       longTerm,
		ConversationID: sess.ConversationID(),
	}, nil
}

// History returns the short-term buffer snapshot, oldest first.
func (m *Manager) History(userID string) []Record {
	return m.session(userID).Snapshot()
}
