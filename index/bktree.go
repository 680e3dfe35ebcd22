package index

import (
	"github.com/poiesic/transmem/analysis"
	"github.com/poiesic/transmem/core"
)

// BKTree is a metric tree over normalized source strings, supporting bounded
// edit-distance queries without scanning the whole corpus. Entries sharing a
// normalized source share a node.
type BKTree struct {
	root *bkNode
	size int
}

type bkNode struct {
	term     string
	ids      []core.ID
	children map[int]*bkNode
}

// NewBKTree creates an empty tree.
func NewBKTree() *BKTree {
	return &BKTree{}
}

// editDistance is the Levenshtein distance counted in runes, not bytes.
func editDistance(a, b string) int {
	return analysis.EditDistance(a, b)
}

// Add inserts a normalized source string for an entry.
func (t *BKTree) Add(term string, id core.ID) {
	t.size++
	if t.root == nil {
		t.root = &bkNode{term: term, ids: []core.ID{id}, children: make(map[int]*bkNode)}
		return
	}

	node := t.root
	for {
		d := editDistance(term, node.term)
		if d == 0 {
			node.ids = append(node.ids, id)
			return
		}
		child, ok := node.children[d]
		if !ok {
			node.children[d] = &bkNode{term: term, ids: []core.ID{id}, children: make(map[int]*bkNode)}
			return
		}
		node = child
	}
}

// BKMatch is one term within the query radius.
type BKMatch struct {
	Term     string
	Ids      []core.ID
	Distance int
}

// Search returns every indexed term within the given edit distance of the
// query. The triangle inequality prunes subtrees whose distance band cannot
// contain a match.
func (t *BKTree) Search(query string, radius int) []BKMatch {
	if t.root == nil {
		return nil
	}

	var matches []BKMatch
	stack := []*bkNode{t.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := editDistance(query, node.term)
		if d <= radius {
			matches = append(matches, BKMatch{Term: node.term, Ids: node.ids, Distance: d})
		}
		for childDist, child := range node.children {
			if childDist >= d-radius && childDist <= d+radius {
				stack = append(stack, child)
			}
		}
	}
	return matches
}

// Len returns the number of inserted entries.
func (t *BKTree) Len() int {
	return t.size
}
