package memory

import "fmt"

// StorageFault reports a failed long-term store operation: backend
// unreachable, corrupted partition, or an embedding dimension mismatch.
// During normal operation it is recovered locally with a degraded
// fallback and reported upward as a warning.
type StorageFault struct {
	Op     string
	UserID string
	Err    error
}

func (f *StorageFault) Error() string {
	return fmt.Sprintf("storage fault: %s for user %q: %v", f.Op, f.UserID, f.Err)
}

func (f *StorageFault) Unwrap() error { return f.Err }

// EmbeddingFault reports an unavailable embedding backend or malformed
// embedder output. The conversation keeps flowing without the long-term
// tier for the affected turn.
type EmbeddingFault struct {
	Err error
}

func (f *EmbeddingFault) Error() string {
	return fmt.Sprintf("embedding fault: %v", f.Err)
}

func (f *EmbeddingFault) Unwrap() error { return f.Err }

// ConfigFault reports an invalid configuration value. It is fatal at
// startup: the system must not run with an inconsistent embedding
// dimension or nonsensical budgets.
type ConfigFault struct {
	Field  string
	Reason string
}

func (f *ConfigFault) Error() string {
	return fmt.Sprintf("config fault: %s: %s", f.Field, f.Reason)
}
