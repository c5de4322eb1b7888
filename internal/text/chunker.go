package text

// loopBuffer is the slack added to the chunk cap when bounding the split
// loop. The loop must terminate even if the advance logic ever stalls, so
// the iteration bound is maxChunks+loopBuffer rather than unbounded.
const loopBuffer = 5

// Split cuts text into windows of at most size characters, each window
// overlapping the previous one by overlap characters. Offsets are counted
// in runes so multi-byte text never gets cut mid-character.
//
// A non-positive size returns the whole text as a single chunk. A negative
// overlap is clamped to zero. When overlap >= size the next window starts
// at the end of the current one instead, so the loop always advances.
// The result is capped at maxChunks entries; the tail of the text beyond
// the cap is dropped. Empty input yields a single empty-string chunk, so
// callers can rely on at least one element.
func Split(text string, size, overlap, maxChunks int) []string {
	if size <= 0 {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}
	if maxChunks < 1 {
		maxChunks = 1
	}

	runes := []rune(text)
	var chunks []string

	start := 0
	for i := 0; i < maxChunks+loopBuffer; i++ {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	return chunks
}
