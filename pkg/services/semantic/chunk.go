package semantic

import "strings"

// SplitChunks splits document text into segments of at most maxChars,
// breaking on paragraph boundaries so no paragraph is cut mid-sentence. A
// single paragraph longer than maxChars becomes its own chunk.
func SplitChunks(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var current string

	for _, para := range strings.Split(text, "\n\n") {
		joined := len(current) + len(para)
		if current != "" {
			joined += len("\n\n")
		}
		if joined > maxChars {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = para
			continue
		}
		if current == "" {
			current = para
		} else {
			current += "\n\n" + para
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
