// Package chunker splits extracted document text into fixed-size units.
package chunker

import "unicode/utf8"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1200

// Split cuts text into contiguous, non-overlapping pieces of at most size
// characters (code points), in order. Boundaries ignore words and sentences
// so the same text always yields the same chunks. A non-positive size falls
// back to DefaultChunkSize.
func Split(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/size+1)
	start, count := 0, 0
	for i := range text {
		if count == size {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, text[start:])
}
