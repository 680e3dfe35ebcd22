package badger

import (
	"fmt"

	"github.com/poiesic/transmem/core"
)

// Key prefixes for different data types
const (
	entryPrefix      = "tment"
	corpusMetaPrefix = "tmmeta"
)

// makeEntryKey generates a key for an entry within a corpus.
// Format: prefix:corpusId:id
func makeEntryKey(corpusId string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", entryPrefix, corpusId, id))
}

// makeEntryScanPrefix generates the iteration prefix for a corpus's entries.
func makeEntryScanPrefix(corpusId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", entryPrefix, corpusId))
}

// makeCorpusMetaKey generates a key for corpus metadata.
func makeCorpusMetaKey(corpusId string) []byte {
	return []byte(fmt.Sprintf("%s:%s", corpusMetaPrefix, corpusId))
}

// corpusMetaScanPrefix is the iteration prefix over all corpus metadata.
func corpusMetaScanPrefix() []byte {
	return []byte(corpusMetaPrefix + ":")
}
