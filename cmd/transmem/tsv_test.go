package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.tsv")
	content := "# comment line\n" +
		"Start the game\t게임 시작\tmenu\n" +
		"\n" +
		"Save your progress\t진행 상황을 저장\n" +
		"source only\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	raws, err := readTSV(path)
	require.NoError(t, err)
	require.Len(t, raws, 3)

	assert.Equal(t, "Start the game", raws[0].SourceText)
	assert.Equal(t, "게임 시작", raws[0].TargetText)
	assert.Equal(t, "menu", raws[0].ContextId)

	assert.Equal(t, "", raws[1].ContextId)

	// Missing target survives to validation, which will count it.
	assert.Equal(t, "source only", raws[2].SourceText)
	assert.Equal(t, "", raws[2].TargetText)
}

func TestReadTSVMissingFile(t *testing.T) {
	_, err := readTSV("/nonexistent/pairs.tsv")
	assert.Error(t, err)
}
