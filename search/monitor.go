package search

import "github.com/poiesic/transmem/core"

// SearchMonitor provides hooks to observe the cascade.
// Implement this interface to track which tiers ran and what they returned.
type SearchMonitor interface {
	Start(query string)
	CacheHit(version uint64)
	TierStart(tier int, kind core.MatchKind)
	TierSkipped(tier int, kind core.MatchKind)
	TierFailed(tier int, kind core.MatchKind, err error)
	TierResults(tier int, ids []core.ID)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) CacheHit(_ uint64)                           {}
func (n *noopMonitor) TierStart(_ int, _ core.MatchKind)           {}
func (n *noopMonitor) TierSkipped(_ int, _ core.MatchKind)         {}
func (n *noopMonitor) TierFailed(_ int, _ core.MatchKind, _ error) {}
func (n *noopMonitor) TierResults(_ int, _ []core.ID)              {}
func (n *noopMonitor) Finish(_ *Result)                            {}
