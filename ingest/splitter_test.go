package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextPacksLines(t *testing.T) {
	text := strings.Join([]string{
		strings.Repeat("a", 100),
		strings.Repeat("b", 100),
		strings.Repeat("c", 100),
		strings.Repeat("d", 100),
	}, "\n")

	chunks := SplitText(text, 300)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], strings.Repeat("a", 100))
	assert.Contains(t, chunks[0], strings.Repeat("b", 100))
	assert.Contains(t, chunks[1], strings.Repeat("d", 100))
}

func TestSplitTextLongLineGetsOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 500)
	chunks := SplitText("short\n"+long+"\nother", 300)

	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "other", chunks[2])
}

func TestSplitTextDropsBlankChunks(t *testing.T) {
	chunks := SplitText("\n\n\n", 300)
	assert.Empty(t, chunks)
}

func TestSplitTextDefaultChunkSize(t *testing.T) {
	chunks := SplitText(strings.Repeat("line\n", 200), 0)
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 310)
	}
}

func TestChunkIDIsStable(t *testing.T) {
	a := ChunkID("manual.pdf", 3)
	b := ChunkID("manual.pdf", 3)
	c := ChunkID("manual.pdf", 4)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
