// Package update applies incremental corpus changes to built index
// artifacts.
//
// An update diffs the incoming batch against the active artifact set by
// source hash and context id, then builds a new version in which only the
// new and modified entries pay the embedding cost. Small removal ratios
// are handled by tombstoning; once removals pass the compaction threshold
// the survivors are rebuilt into a clean set so the dense structures keep
// their accuracy.
package update
