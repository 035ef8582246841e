// Package outgoing splits an assistant response into bounded chunks at
// sentence boundaries and paces their publication to the outgoing queue.
package outgoing

import (
	"regexp"
	"strings"
)

// DefaultMinSplitLength is the threshold below which text is not split at all.
const DefaultMinSplitLength = 500

// DefaultMaxLength is the greedy-pack cap per chunk.
const DefaultMaxLength = 1000

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SplitIntoChunks segments text into chunks of at most maxLength characters,
// packing whole sentences greedily. Sentences are delimited by '.', '!', or
// '?' followed by whitespace. A single sentence longer than maxLength is
// force-split on word boundaries. Text no longer than minSplitLength is
// returned as a single trimmed chunk.
func SplitIntoChunks(text string, minSplitLength, maxLength int) []string {
	if minSplitLength <= 0 {
		minSplitLength = DefaultMinSplitLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= minSplitLength {
		return []string{trimmed}
	}

	sentences := splitSentences(trimmed)

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		if len(sentence) > maxLength {
			flush()
			chunks = append(chunks, splitOnWordBoundaries(sentence, maxLength)...)
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > maxLength {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	if len(chunks) == 0 {
		return []string{trimmed}
	}
	return chunks
}

// splitSentences breaks text on sentence-terminal punctuation followed by
// whitespace, keeping the terminal punctuation attached to its sentence.
func splitSentences(text string) []string {
	indices := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(indices) == 0 {
		return []string{text}
	}

	var sentences []string
	prev := 0
	for _, idx := range indices {
		sentences = append(sentences, strings.TrimSpace(text[prev:idx[0]+1]))
		prev = idx[1]
	}
	if prev < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[prev:]))
	}
	return sentences
}

// splitOnWordBoundaries force-splits an oversized sentence into chunks of at
// most maxLength characters, never breaking inside a word where avoidable.
func splitOnWordBoundaries(sentence string, maxLength int) []string {
	words := strings.Fields(sentence)
	var chunks []string
	var current strings.Builder

	for _, word := range words {
		if len(word) > maxLength {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			for len(word) > maxLength {
				chunks = append(chunks, word[:maxLength])
				word = word[maxLength:]
			}
			current.WriteString(word)
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(word) > maxLength {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}
