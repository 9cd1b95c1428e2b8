package memory

import (
	"context"
	"time"
)

// Role identifies the speaker of a stored exchange turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Record is one stored exchange turn. Once persisted a record is never
// mutated; the store only inserts records or deletes them wholesale.
type Record struct {
	// ID is unique, assigned at creation.
	ID string

	// UserID is the owning user. All reads and writes are scoped to
	// exactly one user.
	UserID string

	Role Role

	// Text is the raw utterance.
	Text string

	// Embedding is the fixed-length vector computed at commit time.
	// Nil marks a turn committed in degraded mode (embedding backend
	// unavailable); such records live only in the short-term buffer.
	Embedding []float32

	// Timestamp is monotonically non-decreasing per user.
	Timestamp time.Time

	// ConversationID groups records created within one continuous
	// session. A session reset issues a new id.
	ConversationID string

	// Seq is the per-user insertion counter, used as the last-resort
	// ranking tie-break.
	Seq uint64
}

// Result pairs a long-term record with its cosine similarity to the
// query vector.
type Result struct {
	Record
	Similarity float32
}

// Store is the vector storage backend interface.
// Implementations: chromem.Store (embedded, persistent).
type Store interface {
	// Insert appends a record with its embedding. Backend failures are
	// retried locally once with backoff before a StorageFault is
	// surfaced. A dimension mismatch is a StorageFault immediately.
	Insert(ctx context.Context, rec Record) error

	// Query returns up to k records for the user ordered by descending
	// cosine similarity, ties broken by more recent timestamp. An empty
	// history yields an empty slice, not an error.
	Query(ctx context.Context, userID string, queryVec []float32, k int) ([]Result, error)

	// Count reports the number of records stored for the user.
	Count(ctx context.Context, userID string) (int, error)

	// DeleteAll purges every record for the user. Idempotent: deleting
	// an already-empty user succeeds silently.
	DeleteAll(ctx context.Context, userID string) error

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings.
// Implementations: onnx.Embedder (local model), mock.Embedder (tests),
// cached.Embedder (read-through cache over either).
type Embedder interface {
	// Embed converts a single text to an embedding vector of fixed
	// length Dimensions().
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
