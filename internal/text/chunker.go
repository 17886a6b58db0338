package text

import (
	"strings"
)

// Approximate characters per token for sizing chunks against the
// embedding model's window.
const charsPerToken = 4

// ChunkText splits plain article text into chunks sized for the embedding
// model, descending through structure: paragraphs, then lines, then words.
// Adjacent chunks overlap by roughly `overlap` tokens of trailing text so
// a sentence split across a boundary stays retrievable. Low-value noise
// chunks are filtered out.
func ChunkText(text string, maxTokens, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	maxChars := maxTokens * charsPerToken
	overlapChars := overlap * charsPerToken

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if chunk == "" {
			return
		}
		chunks = append(chunks, chunk)
		if tail := overlapTail(chunk, overlapChars); tail != "" {
			current.WriteString(tail)
		}
	}

	appendPiece := func(piece, sep string) {
		if current.Len()+len(sep)+len(piece) > maxChars && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) <= maxChars {
			appendPiece(para, "\n\n")
			continue
		}

		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if len(line) <= maxChars {
				appendPiece(line, "\n")
				continue
			}

			// Oversized line: fall back to word-level packing.
			for _, word := range strings.Fields(line) {
				appendPiece(word, " ")
			}
		}
	}
	flush()

	filtered := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if !IsNoiseChunk(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// overlapTail returns the last whole words of chunk up to n characters.
func overlapTail(chunk string, n int) string {
	if n <= 0 || len(chunk) <= n {
		return ""
	}
	tail := chunk[len(chunk)-n:]
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}

// IsNoiseChunk identifies chunks that are too low-value to embed. The
// heuristics are conservative: a borderline chunk passes through rather
// than risk filtering useful content.
func IsNoiseChunk(content string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) == 0 {
		return true
	}

	// Ultra-short labels (e.g. "Overview", "Chapter 3"): few words, no body
	words := strings.Fields(trimmed)
	if len(trimmed) < 30 && len(words) <= 3 && !strings.Contains(trimmed, "\n") {
		return true
	}

	// Copyright/legal boilerplate, unless it is long enough to be the
	// actual article
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "©") || strings.Contains(lower, "all rights reserved") ||
		strings.Contains(lower, "terms of service") || strings.Contains(lower, "privacy policy") {
		if len(trimmed) < 200 {
			return true
		}
	}

	return false
}
