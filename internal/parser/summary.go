package parser

import (
	"strings"
	"time"

	"github.com/whee/cp2md/internal/model"
)

const maxSummaryLen = 160

// Summarize derives listing information from a decoded conversation: the
// number of exchanges, the first and last request time, and the first
// non-empty user message with whitespace collapsed.
func Summarize(path string, conv *model.Conversation) model.ExportSummary {
	summary := model.ExportSummary{
		Path:          path,
		Responder:     conv.ResponderName,
		ExchangeCount: len(conv.Exchanges),
	}

	for _, exchange := range conv.Exchanges {
		if summary.Summary == "" {
			summary.Summary = collapseWhitespace(exchange.UserText)
		}

		if exchange.Timestamp == 0 {
			continue
		}
		ts := time.UnixMilli(exchange.Timestamp).UTC()
		if summary.StartedAt.IsZero() || ts.Before(summary.StartedAt) {
			summary.StartedAt = ts
		}
		if ts.After(summary.LastAt) {
			summary.LastAt = ts
		}
	}

	return summary
}

// collapseWhitespace joins the words of text with single spaces, stopping
// once the result is long enough for a summary column.
func collapseWhitespace(text string) string {
	var builder strings.Builder
	for _, word := range strings.Fields(text) {
		if builder.Len() > 0 {
			builder.WriteRune(' ')
		}
		builder.WriteString(word)
		if builder.Len() >= maxSummaryLen {
			break
		}
	}
	return builder.String()
}
