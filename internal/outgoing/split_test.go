package outgoing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/outgoing"
)

func TestSplitIntoChunksReturnsShortTextUnchanged(t *testing.T) {
	chunks := outgoing.SplitIntoChunks("  Hi there!  ", 500, 1000)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Hi there!", chunks[0])
}

func TestSplitIntoChunksPacksSentencesGreedily(t *testing.T) {
	sentence := strings.Repeat("a", 40) + "."
	text := strings.Repeat(sentence+" ", 20) // ~820 chars, over the min split length

	chunks := outgoing.SplitIntoChunks(text, 100, 200)

	require.True(t, len(chunks) > 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 200)
	}
	assert.Equal(t, strings.TrimSpace(text), strings.Join(chunks, " "))
}

func TestSplitIntoChunksForceSplitsOversizedSentence(t *testing.T) {
	text := strings.Repeat("word ", 60) // one giant "sentence", no terminal punctuation
	chunks := outgoing.SplitIntoChunks(text, 10, 50)

	require.True(t, len(chunks) > 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50)
	}
}

func TestSplitIntoChunksForceSplitsWordLongerThanMax(t *testing.T) {
	text := strings.Repeat("x", 120)
	chunks := outgoing.SplitIntoChunks(text, 10, 50)

	require.True(t, len(chunks) >= 2)
	for _, c := range chunks[:len(chunks)-1] {
		assert.Len(t, c, 50)
	}
}

func TestSplitIntoChunksUsesDefaultsWhenZero(t *testing.T) {
	chunks := outgoing.SplitIntoChunks("short", 0, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}
