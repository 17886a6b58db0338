package text_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mentora/backend/internal/text"
)

func TestChunkText_SingleSmallChunk(t *testing.T) {
	input := strings.Repeat("A sentence of article prose that fits in one chunk. ", 4)
	chunks := text.ChunkText(input, 512, 50)
	assert.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(input), chunks[0])
}

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, text.ChunkText("", 512, 50))
	assert.Nil(t, text.ChunkText("   \n\t  ", 512, 50))
}

func TestChunkText_SplitsLongText(t *testing.T) {
	para := strings.Repeat("Paragraph content with enough words to matter here. ", 10)
	input := strings.Join([]string{para, para, para, para, para, para}, "\n\n")

	chunks := text.ChunkText(input, 128, 10)
	assert.Greater(t, len(chunks), 1)

	maxChars := 128 * 4
	for _, c := range chunks {
		// Overlap carry can nudge a chunk slightly past the target, but
		// never wildly.
		assert.LessOrEqual(t, len(c), maxChars+10*4+1, "chunk length %d", len(c))
	}
}

func TestChunkText_OverlapCarriesTrailingWords(t *testing.T) {
	para := strings.Repeat("alpha bravo charlie delta echo foxtrot golf hotel. ", 20)
	input := para + "\n\n" + para

	chunks := text.ChunkText(input, 64, 10)
	assert.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with text carried over from the
	// tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		firstWord := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], firstWord)
	}
}

func TestChunkText_OversizedLineFallsBackToWords(t *testing.T) {
	// One long unbroken line, far above the chunk size.
	input := strings.Repeat("word ", 1000)
	chunks := text.ChunkText(input, 64, 0)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 64*4+1)
	}
}

func TestChunkText_FiltersNoise(t *testing.T) {
	body := strings.Repeat("Substantial article text worth embedding for retrieval. ", 5)
	input := "Overview\n\n" + body + "\n\n© 2026 Example Corp. All rights reserved."

	chunks := text.ChunkText(input, 512, 0)
	for _, c := range chunks {
		assert.NotEqual(t, "Overview", c)
	}
	assert.NotEmpty(t, chunks)
}

func TestIsNoiseChunk(t *testing.T) {
	assert.True(t, text.IsNoiseChunk(""))
	assert.True(t, text.IsNoiseChunk("Overview"))
	assert.True(t, text.IsNoiseChunk("Chapter 3"))
	assert.True(t, text.IsNoiseChunk("© 2026 Example Corp. All rights reserved."))

	assert.False(t, text.IsNoiseChunk("A complete sentence with enough substance to keep around."))
	long := strings.Repeat("Legal analysis of privacy policy obligations in depth. ", 5)
	assert.False(t, text.IsNoiseChunk(long))
}
