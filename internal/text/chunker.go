package text

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded-length contiguous segment of a document, the unit of
// embedding and retrieval. Ordinal is its position in the original text.
type Chunk struct {
	Ordinal int
	Text    string
}

// Split cuts text into chunks of at most maxLen bytes where consecutive
// chunks share exactly overlap bytes. Each cut prefers a natural boundary
// inside the window: paragraph break, then sentence end, then word break,
// then a raw cut at maxLen. Deterministic for identical input and config.
func Split(text string, maxLen, overlap int) []Chunk {
	if text == "" {
		return nil
	}
	if maxLen <= 0 {
		maxLen = len(text)
	}
	if overlap < 0 || overlap >= maxLen {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + maxLen
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, start, end, maxLen)
		}

		chunks = append(chunks, Chunk{Ordinal: len(chunks), Text: text[start:end]})

		if end == len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			// Chunk shorter than the overlap; advance without overlapping
			// so splitting always terminates.
			next = end
		}
		start = next
	}
	return chunks
}

// cutPoint finds where to end the chunk starting at start. Boundaries are
// only considered in the second half of the window so chunks stay within a
// factor of two of maxLen.
func cutPoint(text string, start, limit, maxLen int) int {
	window := text[start:limit]
	floor := maxLen / 2

	// Paragraph break: cut after the blank line.
	if i := strings.LastIndex(window, "\n\n"); i >= floor {
		return start + i + 2
	}

	// Sentence end: period, question or exclamation mark followed by space/newline.
	best := -1
	for _, sep := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if i := strings.LastIndex(window, sep); i >= floor && i+len(sep) > best {
			best = i + len(sep)
		}
	}
	if best >= 0 {
		return start + best
	}

	// Word break.
	if i := strings.LastIndexAny(window, " \n\t"); i >= floor {
		return start + i + 1
	}

	// Raw cut, backed up to a rune boundary.
	end := limit
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
