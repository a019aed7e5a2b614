package format

import (
	"strings"
	"unicode"
)

const maxHeadingLevel = 6

// heading returns the ATX marker for level pushed down by offset.
func heading(level, offset int) string {
	return strings.Repeat("#", min(level+offset, maxHeadingLevel))
}

// ShiftHeadings pushes every ATX heading in text down by levels, capped at
// level 6, so embedded content cannot compete with the document's own
// sections. Lines inside ``` or ~~~ fences are left alone.
//
// A non-zero shift rejoins lines with "\n": CRLF endings are normalized and a
// trailing newline is dropped.
func ShiftHeadings(text string, levels int) string {
	if levels == 0 {
		return text
	}

	lines := splitLines(text)
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if !inFence {
			lines[i] = shiftHeading(line, levels)
		}
	}
	return strings.Join(lines, "\n")
}

func shiftHeading(line string, levels int) string {
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	// An ATX heading is 1-6 hashes followed by a space.
	if hashes == 0 || hashes > maxHeadingLevel || hashes == len(line) || line[hashes] != ' ' {
		return line
	}
	return strings.Repeat("#", min(hashes+levels, maxHeadingLevel)) + line[hashes:]
}

func isFence(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// splitLines splits on "\n", treating a trailing newline as a terminator
// rather than the start of an empty line, and strips the "\r" of "\r\n".
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		if body, ok := strings.CutSuffix(line, "\n"); ok {
			lines[i] = strings.TrimSuffix(body, "\r")
		}
	}
	return lines
}
