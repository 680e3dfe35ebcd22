package index

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/poiesic/transmem/core"
)

const (
	maxLevel       = 16
	hnswM          = 16 // Max connections per layer
	hnswM0         = 32 // Max connections for layer 0
	efConstruction = 40
	efSearch       = 50
)

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// dot is the inner product. All stored vectors and queries are unit length,
// so this equals cosine similarity.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

type hnswNode struct {
	id        uint64
	level     int
	neighbors [][]uint64 // [level][neighbors]
}

// VectorIndex is a small-world graph (HNSW) over unit-normalized embeddings,
// answering approximate nearest-neighbor queries in sub-linear time. One
// instance exists per embedding granularity (whole text, line, sentence);
// several graph nodes may map back to the same entry.
type VectorIndex struct {
	mu              sync.RWMutex
	nodes           map[uint64]*hnswNode
	vecs            map[uint64][]float32
	owner           map[uint64]core.ID
	owners          map[core.ID]struct{}
	entryPointID    uint64
	currentMaxLevel int
	nextID          uint64
	rng             *rand.Rand
}

// NewVectorIndex creates an empty index. The level generator is seeded
// deterministically so identical insertion sequences build identical graphs
// and rebuilds answer queries identically.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		nodes:           make(map[uint64]*hnswNode),
		vecs:            make(map[uint64][]float32),
		owner:           make(map[uint64]core.ID),
		owners:          make(map[core.ID]struct{}),
		currentMaxLevel: -1,
		rng:             rand.New(rand.NewSource(1)),
	}
}

// Add inserts a unit-normalized vector owned by the given entry.
func (ix *VectorIndex) Add(owner core.ID, vector []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	id := ix.nextID
	ix.nextID++
	ix.vecs[id] = vector
	ix.owner[id] = owner
	ix.owners[owner] = struct{}{}

	level := ix.randomLevel()
	node := &hnswNode{
		id:        id,
		level:     level,
		neighbors: make([][]uint64, level+1),
	}
	ix.nodes[id] = node

	if ix.currentMaxLevel == -1 {
		ix.entryPointID = id
		ix.currentMaxLevel = level
		return
	}

	currEntryPoint := ix.entryPointID

	// Descend from the top level to the node's level greedily
	for l := ix.currentMaxLevel; l > level; l-- {
		currEntryPoint, _ = ix.greedyClosest(vector, currEntryPoint, l)
	}

	// Insert into layers from top-down
	for l := minInt(level, ix.currentMaxLevel); l >= 0; l-- {
		nearestIDs, _ := ix.searchLayer(vector, currEntryPoint, efConstruction, l)

		m := hnswM
		if l == 0 {
			m = hnswM0
		}
		if len(nearestIDs) > m {
			nearestIDs = nearestIDs[:m]
		}

		node.neighbors[l] = nearestIDs
		for _, neighborID := range nearestIDs {
			neighbor := ix.nodes[neighborID]
			neighbor.neighbors[l] = append(neighbor.neighbors[l], id)
		}

		if len(nearestIDs) > 0 {
			currEntryPoint = nearestIDs[0]
		}
	}

	if level > ix.currentMaxLevel {
		ix.entryPointID = id
		ix.currentMaxLevel = level
	}
}

// VectorMatch is one entry matched by similarity search.
type VectorMatch struct {
	Id    core.ID
	Score float32 // cosine similarity clamped to [0,1]
}

// Search returns up to k entries nearest to the query vector, deduplicated by
// owning entry (the best segment wins), highest similarity first.
func (ix *VectorIndex) Search(query []float32, k int) []VectorMatch {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.currentMaxLevel == -1 || k < 1 {
		return nil
	}

	currEP := ix.entryPointID
	for l := ix.currentMaxLevel; l > 0; l-- {
		currEP, _ = ix.greedyClosest(query, currEP, l)
	}

	ef := efSearch
	if ef < k {
		ef = k
	}
	ids, dists := ix.searchLayer(query, currEP, ef, 0)

	best := make(map[core.ID]float32)
	order := make([]core.ID, 0, len(ids))
	for i, id := range ids {
		similarity := 1 - dists[i]
		if similarity < 0 {
			similarity = 0
		} else if similarity > 1 {
			similarity = 1
		}
		entryID := ix.owner[id]
		if prev, ok := best[entryID]; !ok {
			best[entryID] = similarity
			order = append(order, entryID)
		} else if similarity > prev {
			best[entryID] = similarity
		}
	}

	matches := make([]VectorMatch, 0, len(order))
	for _, entryID := range order {
		matches = append(matches, VectorMatch{Id: entryID, Score: best[entryID]})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// greedyClosest finds the single nearest node at a level.
func (ix *VectorIndex) greedyClosest(query []float32, entryPoint uint64, level int) (uint64, float32) {
	curr := entryPoint
	currDist := 1 - dot(query, ix.vecs[curr])

	changed := true
	for changed {
		changed = false
		node := ix.nodes[curr]
		if level >= len(node.neighbors) {
			break
		}
		for _, neighborID := range node.neighbors[level] {
			d := 1 - dot(query, ix.vecs[neighborID])
			if d < currDist {
				currDist = d
				curr = neighborID
				changed = true
			}
		}
	}
	return curr, currDist
}

type neighborResult struct {
	id   uint64
	dist float32
}

// searchLayer finds the ef nearest nodes at a level.
func (ix *VectorIndex) searchLayer(query []float32, entryPoint uint64, ef, level int) ([]uint64, []float32) {
	visited := map[uint64]bool{entryPoint: true}
	start := neighborResult{entryPoint, 1 - dot(query, ix.vecs[entryPoint])}
	candidates := []neighborResult{start}
	results := []neighborResult{start}

	for len(candidates) > 0 {
		c := candidates[0]
		candidates = candidates[1:]

		if len(results) >= ef && c.dist > results[len(results)-1].dist {
			continue
		}

		node := ix.nodes[c.id]
		if level >= len(node.neighbors) {
			continue
		}
		for _, neighborID := range node.neighbors[level] {
			if visited[neighborID] {
				continue
			}
			visited[neighborID] = true
			d := 1 - dot(query, ix.vecs[neighborID])

			if len(results) < ef || d < results[len(results)-1].dist {
				res := neighborResult{neighborID, d}
				candidates = append(candidates, res)
				results = append(results, res)

				sort.Slice(results, func(i, j int) bool { return results[i].dist < results[j].dist })
				if len(results) > ef {
					results = results[:ef]
				}
				sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
			}
		}
	}

	ids := make([]uint64, len(results))
	dists := make([]float32, len(results))
	for i := range results {
		ids[i] = results[i].id
		dists[i] = results[i].dist
	}
	return ids, dists
}

func (ix *VectorIndex) randomLevel() int {
	lvl := 0
	for ix.rng.Float64() < 0.5 && lvl < maxLevel {
		lvl++
	}
	return lvl
}

// Len returns the number of distinct entries in the index.
func (ix *VectorIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.owners)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
