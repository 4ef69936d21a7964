// Package chunk splits document text into overlapping windows for
// independent retrieval.
package chunk

import (
	"ai-tutor-be/pkg/fault"
)

// Chunk is one contiguous window of a source document.
type Chunk struct {
	Text  string
	Index int // 0-based position among chunks of the same document
}

// Split cuts text into chunks of up to chunkSize runes, each overlapping the
// previous one by overlap runes. The final chunk may be shorter; it is still
// emitted. Ordered by Index, the chunks reconstruct the original text.
//
// chunkSize must be positive and overlap must satisfy 0 <= overlap < chunkSize,
// otherwise the cursor would never advance.
func Split(text string, chunkSize, overlap int) ([]Chunk, error) {
	const op = "chunk.Split"

	if chunkSize <= 0 {
		return nil, fault.Newf(fault.KindInvalidArgument, op, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fault.Newf(fault.KindInvalidArgument, op, "overlap %d out of range [0, %d)", overlap, chunkSize)
	}
	if text == "" {
		return nil, nil
	}

	// Rune-based slicing so multi-byte characters are never cut in half.
	runes := []rune(text)
	totalLen := len(runes)
	step := chunkSize - overlap

	var chunks []Chunk
	for start := 0; start < totalLen; start += step {
		end := start + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, Chunk{
			Text:  string(runes[start:end]),
			Index: len(chunks),
		})

		if end == totalLen {
			break
		}
	}

	return chunks, nil
}

// Count returns the number of chunks Split would produce without
// materializing them. Counts runes, not bytes.
func Count(text string, chunkSize, overlap int) (int, error) {
	const op = "chunk.Count"

	if chunkSize <= 0 {
		return 0, fault.Newf(fault.KindInvalidArgument, op, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return 0, fault.Newf(fault.KindInvalidArgument, op, "overlap %d out of range [0, %d)", overlap, chunkSize)
	}

	length := len([]rune(text))
	if length == 0 {
		return 0, nil
	}
	if length <= chunkSize {
		return 1, nil
	}

	step := chunkSize - overlap
	return (length - overlap + step - 1) / step, nil
}
