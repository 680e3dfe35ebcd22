// Package transmem is an embedded translation-memory engine: it ingests
// (source, target, context) translation pairs, builds layered index
// artifacts over them and answers lookup queries through a tiered cascade
// that runs the cheap exact and prefix matchers before falling back to
// edit-distance, semantic vector and fuzzy matching.
//
// Artifact sets are versioned and immutable. Builds and incremental
// updates construct a complete new version while readers keep serving the
// old one; publishing is a single atomic pointer swap and one previous
// version is retained for rollback.
package transmem
