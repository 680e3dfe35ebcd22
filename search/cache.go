package search

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// queryCache is a bounded LRU in front of the cascade. Entries are keyed by
// corpus and artifact version, so corpora sharing the cache never see each
// other's results and a version swap makes stale entries unreachable;
// purgeCorpus drops one corpus's entries eagerly when the caller knows a
// swap happened.
type queryCache struct {
	cache *lru.Cache[string, *Result]
}

func newQueryCache(size int) (*queryCache, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &queryCache{cache: cache}, nil
}

func cacheKey(corpusId string, version uint64, normalized string, opts Options) string {
	return corpusScope(corpusId) + strconv.FormatUint(version, 10) + "\x1f" + normalized + "\x1f" + opts.cacheKey()
}

func corpusScope(corpusId string) string {
	return corpusId + "\x1f"
}

func (c *queryCache) get(key string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *queryCache) put(key string, result *Result) {
	if c == nil {
		return
	}
	c.cache.Add(key, result)
}

// purgeCorpus drops every cached result for one corpus. Called after that
// corpus's artifact version swap; other corpora keep their entries.
func (c *queryCache) purgeCorpus(corpusId string) {
	if c == nil {
		return
	}
	scope := corpusScope(corpusId)
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, scope) {
			c.cache.Remove(key)
		}
	}
}
