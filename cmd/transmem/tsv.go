package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/poiesic/transmem/core"
)

// readTSV decodes a tab-separated file of source, target and optional
// context columns. Blank lines and lines starting with # are skipped;
// malformed lines are left for the validation stage to count.
func readTSV(path string) ([]core.RawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raws []core.RawEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), core.MaxEntryBytes*4)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		raw := core.RawEntry{SourceText: fields[0]}
		if len(fields) > 1 {
			raw.TargetText = fields[1]
		}
		if len(fields) > 2 {
			raw.ContextId = strings.TrimSpace(fields[2])
		}
		raws = append(raws, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return raws, nil
}
