package memory

import (
	"fmt"
	"sort"
	"strings"
)

// RankedContext is the merged, budget-truncated output of both memory
// tiers, handed to the prompt-construction layer. The two sections are
// labeled separately because the generation layer is expected to treat
// recent and recalled context differently.
type RankedContext struct {
	// ShortTerm holds the full session buffer, chronological, oldest
	// first. Recency is trusted without ranking.
	ShortTerm []Record

	// LongTerm holds the similarity-ranked, threshold-filtered,
	// truncated long-term candidates.
	LongTerm []Result

	// Degraded is set when a tier was skipped because of an embedding
	// or storage fault. The caller may surface a "continuing without
	// recall" notice; the context is still usable.
	Degraded bool
}

// Empty reports whether neither tier contributed any records.
func (c *RankedContext) Empty() bool {
	return len(c.ShortTerm) == 0 && len(c.LongTerm) == 0
}

// Format renders the context as two labeled sections ready for prompt
// injection.
func (c *RankedContext) Format() string {
	if c.Empty() {
		return ""
	}

	var parts []string
	if len(c.ShortTerm) > 0 {
		parts = append(parts, "=== RECENT CONVERSATION ===")
		for _, rec := range c.ShortTerm {
			parts = append(parts, fmt.Sprintf("%s: %s", rec.Role, rec.Text))
		}
	}
	if len(c.LongTerm) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, "=== RECALLED MEMORIES ===")
		for i, res := range c.LongTerm {
			parts = append(parts, fmt.Sprintf("%d. [%s] (%.2f) %s: %s",
				i+1, res.Timestamp.Format("2006/01/02 15:04"), res.Similarity, res.Role, res.Text))
		}
	}
	return strings.Join(parts, "\n")
}

// rank produces the final context block from a short-term snapshot and
// the store's similarity-ordered candidates:
//
//  1. re-sort candidates deterministically: similarity descending, then
//     more recent timestamp, then later insertion
//  2. deduplicate against records already present in the buffer
//  3. drop candidates below the minimum similarity threshold
//  4. truncate to maxResults
func rank(shortTerm []Record, candidates []Result, minSimilarity float32, maxResults int) *RankedContext {
	sortCandidates(candidates)

	seen := make(map[string]struct{}, len(shortTerm))
	for _, rec := range shortTerm {
		seen[rec.ID] = struct{}{}
	}

	longTerm := make([]Result, 0, maxResults)
	for _, res := range candidates {
		if res.Similarity < minSimilarity {
			continue
		}
		if _, dup := seen[res.ID]; dup {
			continue
		}
		longTerm = append(longTerm, res)
		if len(longTerm) == maxResults {
			break
		}
	}

	return &RankedContext{ShortTerm: shortTerm, LongTerm: longTerm}
}

// sortCandidates orders results by descending similarity; ties go to the
// more recent timestamp, then to the later insertion. Stable and
// deterministic for reproducible retrievals.
func sortCandidates(candidates []Result) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.Seq > b.Seq
	})
}
