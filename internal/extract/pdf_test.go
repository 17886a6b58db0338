package extract_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentora/backend/internal/extract"
)

// buildPDF assembles a small uncompressed PDF with one Helvetica text line
// per page. Offsets in the xref table are computed while writing so the
// result survives structural validation.
func buildPDF(t *testing.T, title string, pages []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := []int{0}
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	writeObj(fmt.Sprintf("<< /Title (%s) >>", title))

	for i, text := range pages {
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 6+2*i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), xrefOffset)

	return buf.Bytes()
}

func TestPDF_MultiPageKeepsPageOrder(t *testing.T) {
	pages := []string{
		"Alpha page opens the document with enough prose to clear the extraction floor comfortably.",
		"Beta page follows the first and adds a second stretch of readable body text.",
		"Gamma page closes the document so ordering across the page workers can be observed.",
	}
	res, err := extract.PDF(buildPDF(t, "Ordered Fixture", pages))
	require.NoError(t, err)

	assert.Equal(t, 3, res.NumPages)
	assert.Equal(t, "Ordered Fixture", res.Title)

	alpha := strings.Index(res.Content, "Alpha page")
	beta := strings.Index(res.Content, "Beta page")
	gamma := strings.Index(res.Content, "Gamma page")
	require.NotEqual(t, -1, alpha)
	require.NotEqual(t, -1, beta)
	require.NotEqual(t, -1, gamma)
	assert.Less(t, alpha, beta)
	assert.Less(t, beta, gamma)
}

func TestPDF_ThinContentFails(t *testing.T) {
	_, err := extract.PDF(buildPDF(t, "Thin", []string{"Too short."}))
	assert.ErrorIs(t, err, extract.ErrInsufficientContent)
}

func TestPDF_RejectsGarbage(t *testing.T) {
	_, err := extract.PDF([]byte("%PDF-1.7 but the rest is garbage"))
	assert.Error(t, err)
}

func TestPDF_RejectsEmptyInput(t *testing.T) {
	_, err := extract.PDF(nil)
	assert.Error(t, err)
}
