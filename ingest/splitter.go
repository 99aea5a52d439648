package ingest

import "strings"

// SplitText breaks extracted text into chunks of roughly chunkSize
// characters, packing whole lines so a paragraph is never cut mid-line.
// Whitespace-only chunks are dropped.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 300
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line) >= chunkSize && current.Len() > 0 {
			if c := strings.TrimSpace(current.String()); c != "" {
				chunks = append(chunks, c)
			}
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if c := strings.TrimSpace(current.String()); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}
