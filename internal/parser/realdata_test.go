package parser

import (
	"os"
	"testing"

	"github.com/whee/cp2md/internal/model"
)

// Set CP2MD_REAL_EXPORT to a chat export saved from VS Code to run this.
func TestRealExport(t *testing.T) {
	path := os.Getenv("CP2MD_REAL_EXPORT")
	if path == "" {
		t.Skip("CP2MD_REAL_EXPORT not set")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("Real export file not found")
	}

	conv, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	t.Run("Summarize", func(t *testing.T) {
		summary := Summarize(path, conv)

		t.Logf("Summary:")
		t.Logf("  Responder: %s", summary.Responder)
		t.Logf("  First message: %s", summary.Summary)
		t.Logf("  Exchanges: %d", summary.ExchangeCount)
		t.Logf("  Started: %s", summary.StartedAt)

		if summary.Responder == "" {
			t.Error("Expected non-empty responder")
		}
	})

	t.Run("Elements", func(t *testing.T) {
		counts := make(map[string]int)
		attachments := 0
		for _, exchange := range conv.Exchanges {
			attachments += len(exchange.Attachments)
			for _, element := range exchange.Response {
				switch element.(type) {
				case model.Text:
					counts["text"]++
				case model.InlineReference:
					counts["inlineReference"]++
				case model.CodeReference:
					counts["codeReference"]++
				case model.EditSummary:
					counts["editSummary"]++
				case model.ToolCall:
					counts["toolCall"]++
				case model.Unrecognized:
					counts["unrecognized"]++
				}
			}
		}

		t.Logf("Response elements: %v", counts)
		t.Logf("Attachments: %d", attachments)

		if len(conv.Exchanges) > 0 && counts["text"] == 0 {
			t.Error("Expected at least one text element")
		}
	})
}
