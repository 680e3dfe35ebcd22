package index

import "github.com/poiesic/transmem/core"

// ExactIndex maps source hashes to variation groups: all entries sharing a
// normalized source text, distinguished by context id. It also serves as the
// entry table for the whole artifact set.
type ExactIndex struct {
	groups map[string][]*core.Entry // source hash -> variation group
	byId   map[core.ID]*core.Entry
}

// NewExactIndex creates an empty exact-hash index.
func NewExactIndex() *ExactIndex {
	return &ExactIndex{
		groups: make(map[string][]*core.Entry),
		byId:   make(map[core.ID]*core.Entry),
	}
}

// Add inserts an entry into its variation group. Duplicate IDs are ignored.
func (x *ExactIndex) Add(e *core.Entry) {
	if _, ok := x.byId[e.Id]; ok {
		return
	}
	x.byId[e.Id] = e
	x.groups[e.SourceHash] = append(x.groups[e.SourceHash], e)
}

// Lookup returns the variation group for a source hash, or nil.
// The returned slice must not be modified.
func (x *ExactIndex) Lookup(sourceHash string) []*core.Entry {
	return x.groups[sourceHash]
}

// Entry returns the entry with the given ID, or nil.
func (x *ExactIndex) Entry(id core.ID) *core.Entry {
	return x.byId[id]
}

// Len returns the number of indexed entries.
func (x *ExactIndex) Len() int {
	return len(x.byId)
}

// Groups returns the number of distinct normalized sources.
func (x *ExactIndex) Groups() int {
	return len(x.groups)
}
