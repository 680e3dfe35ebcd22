package update

import (
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
	"github.com/poiesic/transmem/index"
)

// ChangeSet classifies an incoming batch against the active artifact set.
// Every entry of the batch and every live entry of the active set lands in
// exactly one bucket.
type ChangeSet struct {
	// New are assembled entries whose source or context variation is not
	// in the active set.
	New []*core.Entry

	// Modified are replacement entries for sources whose target changed.
	Modified []*core.Entry

	// Superseded are the active entries replaced by Modified ones.
	Superseded []*core.Entry

	// Deleted are active entries absent from the batch.
	Deleted []*core.Entry

	// Unchanged are active entries the batch restates verbatim.
	Unchanged []*core.Entry
}

// Changed returns the entries that need embedding: new plus modified.
func (c *ChangeSet) Changed() int {
	return len(c.New) + len(c.Modified)
}

// Removed returns the entries leaving the corpus: superseded plus deleted.
func (c *ChangeSet) Removed() int {
	return len(c.Superseded) + len(c.Deleted)
}

// DetectChanges diffs a full batch of raw entries against the active set.
// The source hash keys the comparison: an unknown hash is a new source, a
// known hash with a new context id is a new variation, a known variation
// with a different target is a modification, and live entries the batch no
// longer mentions are deletions.
func DetectChanges(raws []core.RawEntry, active *index.Set) *ChangeSet {
	changes := &ChangeSet{}
	covered := make(map[core.ID]struct{})

	for _, raw := range raws {
		normalized := analysis.Normalize(raw.SourceText)
		hash := analysis.HashText(raw.SourceText)

		var current *core.Entry
		for _, e := range active.Exact.Lookup(hash) {
			if e.ContextId == raw.ContextId && !active.Tombstoned(e.Id) {
				current = e
				break
			}
		}

		switch {
		case current == nil:
			changes.New = append(changes.New, core.NewEntry(raw, normalized, hash))
		case current.TargetText == raw.TargetText:
			covered[current.Id] = struct{}{}
			changes.Unchanged = append(changes.Unchanged, current)
		default:
			covered[current.Id] = struct{}{}
			changes.Modified = append(changes.Modified, core.NewEntry(raw, normalized, hash))
			changes.Superseded = append(changes.Superseded, current)
		}
	}

	for _, e := range active.LiveEntries() {
		if _, ok := covered[e.Id]; !ok {
			changes.Deleted = append(changes.Deleted, e)
		}
	}

	return changes
}
