package index

import (
	"slices"

	"github.com/poiesic/transmem/core"
)

// PrefixTrie indexes normalized source strings by their rune prefixes.
// A lookup walks the query as deep as the trie allows and collects sources
// that either are prefixes of the query or extend the deepest shared prefix.
type PrefixTrie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[rune]*trieNode
	ids      []core.ID // sources terminating at this node
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// NewPrefixTrie creates an empty trie.
func NewPrefixTrie() *PrefixTrie {
	return &PrefixTrie{root: newTrieNode()}
}

// Insert adds a normalized source string for an entry.
func (t *PrefixTrie) Insert(normalizedSource string, id core.ID) {
	node := t.root
	for _, r := range normalizedSource {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}
	node.ids = append(node.ids, id)
	t.size++
}

// PrefixMatch is one trie candidate with the shared prefix length in runes.
type PrefixMatch struct {
	Id           core.ID
	SharedPrefix int
}

// Lookup walks the query through the trie and returns up to limit candidates.
// Terminal nodes along the walk (sources that are prefixes of the query) are
// always included; the subtree under the deepest reached node contributes
// sources extending the query, nearest first.
func (t *PrefixTrie) Lookup(query string, limit int) []PrefixMatch {
	if limit < 1 {
		limit = 1
	}

	var matches []PrefixMatch
	node := t.root
	depth := 0
	for _, r := range query {
		child, ok := node.children[r]
		if !ok {
			break
		}
		node = child
		depth++
		for _, id := range node.ids {
			matches = append(matches, PrefixMatch{Id: id, SharedPrefix: depth})
		}
	}

	if depth > 0 {
		matches = append(matches, t.collect(node, depth, limit+len(matches))...)
	}

	// Deduplicate, keeping the deepest occurrence, which comes last.
	seen := make(map[core.ID]int, len(matches))
	deduped := matches[:0]
	for _, m := range matches {
		if at, ok := seen[m.Id]; ok {
			if m.SharedPrefix > deduped[at].SharedPrefix {
				deduped[at] = m
			}
			continue
		}
		seen[m.Id] = len(deduped)
		deduped = append(deduped, m)
	}

	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

// collect gathers terminal IDs in the subtree below node, breadth-first so
// the shortest extensions of the query come first. Children are visited in
// rune order to keep candidate selection deterministic across rebuilds.
func (t *PrefixTrie) collect(node *trieNode, depth, limit int) []PrefixMatch {
	var matches []PrefixMatch
	queue := []*trieNode{node}
	for len(queue) > 0 && len(matches) < limit {
		next := queue[0]
		queue = queue[1:]
		if next != node {
			for _, id := range next.ids {
				matches = append(matches, PrefixMatch{Id: id, SharedPrefix: depth})
				if len(matches) >= limit {
					return matches
				}
			}
		}
		runes := make([]rune, 0, len(next.children))
		for r := range next.children {
			runes = append(runes, r)
		}
		slices.Sort(runes)
		for _, r := range runes {
			queue = append(queue, next.children[r])
		}
	}
	return matches
}

// Len returns the number of inserted sources.
func (t *PrefixTrie) Len() int {
	return t.size
}
