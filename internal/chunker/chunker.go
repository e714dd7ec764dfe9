// Package chunker splits long free-text documents into overlapping
// fixed-size windows for indexing. Windows are measured in runes so a
// multi-byte character is never split, and consecutive chunks share
// exactly the configured overlap, which makes the split lossless:
// dropping the first overlap runes of every chunk after the first
// reconstructs the input.
package chunker

const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Split windows content into chunks of at most size runes with the
// given overlap between neighbors. Cuts prefer paragraph, then
// sentence, then word boundaries near the window end. Content shorter
// than size yields exactly one chunk equal to the whole content.
func Split(content string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(content)
	if len(runes) <= size {
		if content == "" {
			return nil
		}
		return []string{content}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		cut := cutPoint(runes, start, end, overlap)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
}

// cutPoint picks where to end the chunk starting at start whose hard
// limit is end. It scans backwards through the tail of the window for a
// natural boundary, but never so far that the next chunk would fail to
// make progress past the overlap.
func cutPoint(runes []rune, start, end, overlap int) int {
	// Only consider boundaries in the last fifth of the window, and
	// always keep the chunk longer than the overlap.
	floor := max(start+overlap+1, end-(end-start)/5)

	if i := lastParagraphBreak(runes, floor, end); i >= 0 {
		return i
	}
	if i := lastSentenceEnd(runes, floor, end); i >= 0 {
		return i
	}
	if i := lastWordBreak(runes, floor, end); i >= 0 {
		return i
	}
	return end
}

// lastParagraphBreak returns the cut position just after the last blank
// line in [floor, end), or -1.
func lastParagraphBreak(runes []rune, floor, end int) int {
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	return -1
}

// lastSentenceEnd returns the cut position just after the last
// sentence-terminating punctuation followed by whitespace, or -1.
func lastSentenceEnd(runes []rune, floor, end int) int {
	for i := end - 1; i >= floor; i-- {
		if i+1 < len(runes) && isSentenceEnd(runes[i]) && isSpace(runes[i+1]) {
			return i + 1
		}
	}
	return -1
}

// lastWordBreak returns the cut position just after the last whitespace
// rune, or -1.
func lastWordBreak(runes []rune, floor, end int) int {
	for i := end - 1; i >= floor; i-- {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
