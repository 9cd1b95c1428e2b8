package memory

import (
	"testing"
	"time"
)

func TestSessionEviction(t *testing.T) {
	s := NewSession(3, nil)

	for _, text := range []string{"t1", "t2", "t3", "t4"} {
		s.Append("alice", RoleUser, text, nil)
	}

	snap := s.Snapshot()
	want := []string{"t2", "t3", "t4"}
	if len(snap) != len(want) {
		t.Fatalf("buffer holds %d records, want %d", len(snap), len(want))
	}
	for i, rec := range snap {
		if rec.Text != want[i] {
			t.Errorf("buffer[%d] = %q, want %q", i, rec.Text, want[i])
		}
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession(5, nil)
	s.Append("alice", RoleUser, "hello", nil)
	before := s.ConversationID()

	s.Clear()

	if s.Len() != 0 {
		t.Errorf("buffer not empty after clear: %d records", s.Len())
	}
	if s.ConversationID() == before {
		t.Error("clear did not issue a new conversation id")
	}
}

func TestSessionSeqSurvivesClear(t *testing.T) {
	s := NewSession(5, nil)
	first := s.Append("alice", RoleUser, "one", nil)
	s.Clear()
	second := s.Append("alice", RoleUser, "two", nil)

	if second.Seq <= first.Seq {
		t.Errorf("sequence counter restarted across clear: %d then %d", first.Seq, second.Seq)
	}
}

func TestSessionTimestampsMonotonic(t *testing.T) {
	// A clock that steps backwards, as a wall clock can.
	times := []time.Time{
		time.Date(2025, 6, 1, 12, 0, 2, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 3, 0, time.UTC),
	}
	i := 0
	s := NewSession(5, func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	var prev time.Time
	for n := 0; n < len(times); n++ {
		rec := s.Append("alice", RoleUser, "x", nil)
		if rec.Timestamp.Before(prev) {
			t.Errorf("timestamp went backwards at record %d: %v < %v", n, rec.Timestamp, prev)
		}
		prev = rec.Timestamp
	}
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	s := NewSession(5, nil)
	s.Append("alice", RoleUser, "hello", nil)

	snap := s.Snapshot()
	snap[0].Text = "mutated"

	if got := s.Snapshot()[0].Text; got != "hello" {
		t.Errorf("snapshot aliased the buffer: %q", got)
	}
}
