package format

import "strings"

// EscapeTags rewrites tag-like markup as entities so it displays literally.
// A '<' is escaped only when followed by an ASCII letter, '/' or '!', which
// keeps comparisons such as "x < 5" intact; the next '>' after an escaped
// '<' is escaped too, even when the tag spans lines. Fenced code blocks are
// copied unchanged.
func EscapeTags(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	inFence, inTag := false, false
	for _, line := range strings.SplitAfter(text, "\n") {
		if isFence(line) {
			inFence = !inFence
			builder.WriteString(line)
			continue
		}
		if inFence {
			builder.WriteString(line)
			continue
		}
		inTag = escapeLine(&builder, line, inTag)
	}
	return builder.String()
}

// escapeLine writes line with tags escaped and reports whether an escaped
// '<' is still waiting for its '>'.
func escapeLine(builder *strings.Builder, line string, inTag bool) bool {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '<' && i+1 < len(line) && opensTag(line[i+1]):
			builder.WriteString("&lt;")
			inTag = true
		case c == '>' && inTag:
			builder.WriteString("&gt;")
			inTag = false
		default:
			builder.WriteByte(c)
		}
	}
	return inTag
}

func opensTag(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '/' || c == '!'
}

// escapeInlineCode replaces backticks, which would end an inline code span.
func escapeInlineCode(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

// isOnlyCodeFences reports whether text holds nothing but ``` lines and blank
// lines, which streaming leaves behind between real chunks.
func isOnlyCodeFences(text string) bool {
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && trimmed != "```" {
			return false
		}
	}
	return true
}
