package format

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/whee/cp2md/internal/model"
)

const (
	documentTitle     = "Copilot Chat"
	metadataSeparator = " · "
	toolGlyph         = "🔧"
	documentSeparator = "\n---\n\n"
)

// Markdown renders conv as a Markdown document. The result depends only on
// its arguments.
func Markdown(conv *model.Conversation, opts Options) string {
	var out strings.Builder
	offset := opts.offset()

	fmt.Fprintf(&out, "%s %s\n\n", heading(1, offset), documentTitle)
	for i := range conv.Exchanges {
		renderExchange(&out, &conv.Exchanges[i], opts, offset)
	}
	return out.String()
}

// JoinDocuments concatenates rendered documents with a horizontal rule
// between each pair.
func JoinDocuments(docs []string) string {
	return strings.Join(docs, documentSeparator)
}

func renderExchange(out *strings.Builder, exchange *model.Exchange, opts Options, offset int) {
	// Embedded headings are pushed below the User/Assistant sections.
	shift := 2 + offset

	fmt.Fprintf(out, "%s User\n\n", heading(2, offset))
	if meta := metadataLine(exchange, opts); meta != "" {
		fmt.Fprintf(out, "%s\n\n", meta)
	}
	if opts.ShowAttachments && len(exchange.Attachments) > 0 {
		renderAttachments(out, exchange.Attachments)
	}

	out.WriteString(EscapeTags(ShiftHeadings(exchange.UserText, shift)))
	out.WriteString("\n\n")

	if opts.ShowTools {
		renderToolCalls(out, exchange.Response)
	}

	fmt.Fprintf(out, "%s Assistant\n\n", heading(2, offset))
	renderResponse(out, exchange.Response, shift)
}

func metadataLine(exchange *model.Exchange, opts Options) string {
	var parts []string
	if opts.ShowTimestamps {
		if ts, ok := formatTimestamp(exchange.Timestamp); ok {
			parts = append(parts, ts)
		}
	}
	if opts.ShowModel && exchange.ModelID != nil {
		parts = append(parts, *exchange.ModelID)
	}
	if opts.ShowAgent && exchange.AgentName != nil {
		parts = append(parts, "@"+*exchange.AgentName)
	}

	if len(parts) == 0 {
		return ""
	}
	return "*" + strings.Join(parts, metadataSeparator) + "*"
}

// Years the metadata line can show.
const (
	minTimestampYear = -262144
	maxTimestampYear = 262143
)

// formatTimestamp renders millis as "2006-01-02 15:04 UTC". Years past 9999
// carry a leading '+'; times outside the supported year range are reported
// as unrepresentable.
func formatTimestamp(millis int64) (string, bool) {
	ts := time.UnixMilli(millis).UTC()
	year := ts.Year()
	if year < minTimestampYear || year > maxTimestampYear {
		return "", false
	}

	formatted := ts.Format("2006-01-02 15:04") + " UTC"
	if year > 9999 {
		formatted = "+" + formatted
	}
	return formatted, true
}

func renderToolCalls(out *strings.Builder, elements []model.ResponseElement) {
	rendered := false
	for _, element := range elements {
		call, ok := element.(model.ToolCall)
		if !ok || call.Summary == nil {
			continue
		}
		fmt.Fprintf(out, "> %s %s\n", toolGlyph, EscapeTags(*call.Summary))
		rendered = true
	}
	if rendered {
		out.WriteString("\n")
	}
}

func renderResponse(out *strings.Builder, elements []model.ResponseElement, shift int) {
	for _, element := range elements {
		switch el := element.(type) {
		case model.Text:
			trimmed := strings.TrimSpace(el.Content)
			if trimmed == "" || isOnlyCodeFences(trimmed) {
				continue
			}
			out.WriteString(EscapeTags(ShiftHeadings(el.Content, shift)))
		case model.InlineReference:
			display := baseName(el.Path)
			if el.Name != nil {
				display = *el.Name
			}
			fmt.Fprintf(out, "`%s`", escapeInlineCode(display))
		case model.EditSummary:
			if len(el.Edits) == 0 {
				continue
			}
			fmt.Fprintf(out, "\n*Modified `%s` (%d lines)*\n\n", escapeInlineCode(baseName(el.Path)), countLines(el.Edits))
		case model.CodeReference, model.ToolCall, model.Unrecognized:
			// Tool calls are rendered in the user section; the rest has no
			// visible form.
		}
	}
	out.WriteString("\n\n")
}

func countLines(edits []string) int {
	total := 0
	for _, edit := range edits {
		total += len(splitLines(edit))
	}
	return total
}

// baseName returns the final element of a slash-separated path, or p itself
// when it has none (empty, "/", "." or "..").
func baseName(p string) string {
	if p == "" {
		return p
	}
	base := path.Base(p)
	if base == "." || base == ".." {
		return p
	}
	return base
}
