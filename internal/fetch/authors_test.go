package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAuthors_MetaTag(t *testing.T) {
	html := `<html><head><meta name="author" content="Jane Roe"></head><body></body></html>`
	assert.Equal(t, []string{"Jane Roe"}, extractAuthors(html))
}

func TestExtractAuthors_BylinePatterns(t *testing.T) {
	html := `<html><body>
		<span class="byline">By John Smith</span>
		<div class="author-name">Ada Lovelace</div>
		<a rel="author">Grace Hopper</a>
	</body></html>`

	got := extractAuthors(html)
	assert.Equal(t, []string{"John Smith", "Ada Lovelace", "Grace Hopper"}, got)
}

func TestExtractAuthors_DeduplicatesCaseInsensitively(t *testing.T) {
	html := `<html><head><meta name="author" content="Jane Roe"></head><body>
		<span class="byline">by jane roe</span>
	</body></html>`

	got := extractAuthors(html)
	assert.Len(t, got, 1)
	assert.Equal(t, "Jane Roe", got[0])
}

func TestExtractAuthors_SkipsContainerGrabs(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	html := `<html><body><div class="author">` + string(long) + `</div></body></html>`
	assert.Empty(t, extractAuthors(html))
}

func TestExtractAuthors_NoneFound(t *testing.T) {
	assert.Empty(t, extractAuthors(`<html><body><p>No byline here.</p></body></html>`))
}
