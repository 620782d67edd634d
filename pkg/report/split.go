package report

import (
	"fmt"
	"strings"
)

// DiscordMessageLimit is the maximum message length Discord accepts
const DiscordMessageLimit = 2000

// Chunker breaks rendered output into message-sized pieces on line boundaries
type Chunker struct {
	MaxLength int
	// CodeBlock wraps every chunk in ``` fences so table columns stay aligned
	CodeBlock bool
}

// NewChunker creates a chunker for plain text chunks
func NewChunker(maxLength int) *Chunker {
	return &Chunker{MaxLength: maxLength}
}

func (c *Chunker) budget() int {
	if !c.CodeBlock {
		return c.MaxLength
	}
	// "```\n" + "\n```"
	return c.MaxLength - 8
}

// Split returns chunks no longer than MaxLength. Lines are only broken when a
// single line is longer than the budget on its own.
func (c *Chunker) Split(content string) []string {
	limit := c.budget()
	if limit <= 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
	}

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}

		extra := len(line)
		if current.Len() > 0 {
			extra++
		}
		if current.Len()+extra > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if c.CodeBlock {
		for i := range chunks {
			chunks[i] = "```\n" + chunks[i] + "\n```"
		}
	}
	return chunks
}

// SplitWithParts prefixes every chunk after the first with "(Part i/n)".
// The prefix is allowed to push a chunk slightly past MaxLength.
func (c *Chunker) SplitWithParts(content string) []string {
	chunks := c.Split(content)
	if len(chunks) <= 1 {
		return chunks
	}
	for i := 1; i < len(chunks); i++ {
		chunks[i] = fmt.Sprintf("(Part %d/%d)\n%s", i+1, len(chunks), chunks[i])
	}
	return chunks
}

// Truncate cuts content to maxLength, ending with "..." when there is room
func Truncate(content string, maxLength int) string {
	switch {
	case len(content) <= maxLength:
		return content
	case maxLength <= 0:
		return ""
	case maxLength <= 3:
		return content[:maxLength]
	}
	return content[:maxLength-3] + "..."
}
