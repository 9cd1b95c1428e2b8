// Package memory implements the two-tier conversational memory core:
// a bounded, session-scoped short-term buffer and a durable, per-user,
// embedding-indexed long-term store.
//
// Architecture:
//   - Store: vector storage backend (chromem-go for the embedded store)
//   - Embedder: text-to-vector conversion (ONNX local model, mock for tests)
//   - Manager: orchestrates commit, retrieval, session reset, and purge
//
// On every turn the Manager merges the short-term snapshot with a
// similarity search over the long-term store and hands both to the
// ranker, which produces a deduplicated, threshold-filtered,
// budget-truncated RankedContext for the prompt-construction layer.
//
// Isolation: all long-term reads and writes are partitioned by user ID.
// A query never returns another user's records.
package memory
