// Package chromem implements the memory.Store interface on top of
// chromem-go, a pure Go embedded vector database. Each user gets a
// dedicated collection so no query can cross partitions, and the
// database can persist to disk so long-term memory survives restarts.
package chromem

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/neurochat/neurochat/memory"
)

// insertRetryBackoff is the pause before the single local retry of a
// failed insert.
const insertRetryBackoff = 250 * time.Millisecond

// addDocument performs the backend write; indirected so tests can
// inject write failures.
var addDocument = func(ctx context.Context, col *chromem.Collection, doc chromem.Document) error {
	return col.AddDocument(ctx, doc)
}

// Config configures the store.
type Config struct {
	// Path is the on-disk location of the database. Empty keeps the
	// store purely in memory (tests, throwaway runs).
	Path string

	// Dimensions is the enforced embedding dimension. Inserts with a
	// different vector length fail with a StorageFault.
	Dimensions int
}

// Store is a chromem-go backed vector store partitioned by user.
type Store struct {
	db          *chromem.DB
	dims        int
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// New opens the store, loading any collections persisted at cfg.Path.
func New(cfg Config) (*Store, error) {
	if cfg.Dimensions <= 0 {
		return nil, &memory.ConfigFault{Field: "Dimensions", Reason: "must be positive"}
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open persistent db: %w", err)
		}
	}

	return &Store{
		db:          db,
		dims:        cfg.Dimensions,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collectionName derives the per-user partition name.
func collectionName(userID string) string {
	return "user_" + userID
}

// collection returns the user's collection, creating it on first write.
func (s *Store) collection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, ok := s.collections[userID]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[userID]; ok {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(collectionName(userID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}
	s.collections[userID] = col
	return col, nil
}

// Insert appends a record. The backend write is retried once with
// backoff before the fault is surfaced; a dimension mismatch fails
// immediately.
func (s *Store) Insert(ctx context.Context, rec memory.Record) error {
	if len(rec.Embedding) != s.dims {
		return &memory.StorageFault{
			Op:     "insert",
			UserID: rec.UserID,
			Err:    fmt.Errorf("embedding dimension %d, store requires %d", len(rec.Embedding), s.dims),
		}
	}

	col, err := s.collection(rec.UserID)
	if err != nil {
		return &memory.StorageFault{Op: "insert", UserID: rec.UserID, Err: err}
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"user_id":         rec.UserID,
			"role":            string(rec.Role),
			"conversation_id": rec.ConversationID,
			"timestamp":       rec.Timestamp.Format(time.RFC3339Nano),
			"seq":             strconv.FormatUint(rec.Seq, 10),
		},
	}

	if err := addDocument(ctx, col, doc); err != nil {
		log.Printf("[CHROMEM] insert failed, retrying once: %v", err)
		select {
		case <-time.After(insertRetryBackoff):
		case <-ctx.Done():
			return &memory.StorageFault{Op: "insert", UserID: rec.UserID, Err: ctx.Err()}
		}
		if err := addDocument(ctx, col, doc); err != nil {
			return &memory.StorageFault{Op: "insert", UserID: rec.UserID, Err: err}
		}
	}
	return nil
}

// Query returns up to k of the user's records ordered by descending
// cosine similarity, ties broken by more recent timestamp, then later
// insertion. Empty history is a normal state and yields an empty slice.
func (s *Store) Query(ctx context.Context, userID string, queryVec []float32, k int) ([]memory.Result, error) {
	if len(queryVec) != s.dims {
		return nil, &memory.StorageFault{
			Op:     "query",
			UserID: userID,
			Err:    fmt.Errorf("query dimension %d, store requires %d", len(queryVec), s.dims),
		}
	}

	col, err := s.collection(userID)
	if err != nil {
		return nil, &memory.StorageFault{Op: "query", UserID: userID, Err: err}
	}

	// chromem rejects nResults larger than the collection.
	if n := col.Count(); n < k {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	raw, err := col.QueryEmbedding(ctx, queryVec, k, map[string]string{"user_id": userID}, nil)
	if err != nil {
		return nil, &memory.StorageFault{Op: "query", UserID: userID, Err: err}
	}

	results := make([]memory.Result, 0, len(raw))
	for _, r := range raw {
		rec, err := recordFromResult(r)
		if err != nil {
			log.Printf("[CHROMEM] skipping undecodable record %s: %v", r.ID, err)
			continue
		}
		results = append(results, memory.Result{Record: rec, Similarity: r.Similarity})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.Seq > b.Seq
	})
	return results, nil
}

// Count reports the number of records stored for the user.
func (s *Store) Count(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	col, ok := s.collections[userID]
	s.mu.RUnlock()
	if !ok {
		col = s.db.GetCollection(collectionName(userID), nil)
		if col == nil {
			return 0, nil
		}
		s.mu.Lock()
		s.collections[userID] = col
		s.mu.Unlock()
	}
	return col.Count(), nil
}

// DeleteAll drops the user's collection wholesale. Deleting a user with
// no history succeeds silently.
func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.collections, userID)
	s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName(userID)); err != nil {
		return &memory.StorageFault{Op: "delete_all", UserID: userID, Err: err}
	}
	return nil
}

// Close releases resources. chromem flushes on write, nothing to do.
func (s *Store) Close() error {
	return nil
}

// recordFromResult rebuilds a memory.Record from stored document fields.
func recordFromResult(r chromem.Result) (memory.Record, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Metadata["timestamp"])
	if err != nil {
		return memory.Record{}, fmt.Errorf("parse timestamp: %w", err)
	}
	seq, err := strconv.ParseUint(r.Metadata["seq"], 10, 64)
	if err != nil {
		return memory.Record{}, fmt.Errorf("parse seq: %w", err)
	}
	return memory.Record{
		ID:             r.ID,
		UserID:         r.Metadata["user_id"],
		Role:           memory.Role(r.Metadata["role"]),
		Text:           r.Content,
		Embedding:      r.Embedding,
		Timestamp:      ts,
		ConversationID: r.Metadata["conversation_id"],
		Seq:            seq,
	}, nil
}
