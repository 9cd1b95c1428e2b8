package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the live, in-memory counterpart of the long-term store: a
// fixed-capacity, FIFO-evicting buffer of the most recent turns plus the
// active conversation id. The Manager owns sessions exclusively; no other
// component mutates buffer state.
type Session struct {
	mu             sync.Mutex
	capacity       int
	conversationID string
	records        []Record
	lastTimestamp  time.Time
	seq            uint64
	clock          func() time.Time
}

// NewSession creates a session with the given buffer capacity and issues
// the initial conversation id.
func NewSession(capacity int, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		capacity:       capacity,
		conversationID: uuid.NewString(),
		clock:          clock,
	}
}

// Append mints a record for the turn and appends it to the buffer,
// evicting the oldest record when capacity is exceeded. Timestamps are
// clamped to be non-decreasing per session owner.
func (s *Session) Append(userID string, role Role, text string, embedding []float32) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if now.Before(s.lastTimestamp) {
		now = s.lastTimestamp
	}
	s.lastTimestamp = now
	s.seq++

	rec := Record{
		ID:             uuid.NewString(),
		UserID:         userID,
		Role:           role,
		Text:           text,
		Embedding:      embedding,
		Timestamp:      now,
		ConversationID: s.conversationID,
		Seq:            s.seq,
	}

	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return rec
}

// Snapshot returns the buffered records in chronological order, oldest
// first. The returned slice is a copy.
func (s *Session) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of buffered records.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ConversationID returns the active conversation id.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Clear empties the buffer and issues a new conversation id. The
// long-term store is untouched by a clear. The per-session sequence
// counter keeps counting so insertion order stays totally ordered.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.conversationID = uuid.NewString()
}
