package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/whee/cp2md/internal/model"
)

var summaryHeaders = []string{"started", "exchanges", "responder", "path", "summary"}

type summaryRecord struct {
	Path          string `json:"path"`
	Responder     string `json:"responder"`
	StartedAt     string `json:"started_at,omitempty"`
	LastAt        string `json:"last_at,omitempty"`
	ExchangeCount int    `json:"exchange_count"`
	Summary       string `json:"summary"`
}

// WriteSummaries writes export summaries to w as a table, tsv, json or jsonl.
func WriteSummaries(w io.Writer, items []model.ExportSummary, includeHeader bool, format string) error {
	switch format {
	case "table":
		return writeSummariesTable(w, items, includeHeader)
	case "tsv":
		return writeSummariesTSV(w, items, includeHeader)
	case "json":
		return writeSummariesJSON(w, items)
	case "jsonl":
		return writeSummariesJSONL(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSummariesTable(w io.Writer, items []model.ExportSummary, includeHeader bool) error {
	t := table.New().Border(lipgloss.NormalBorder())
	if includeHeader {
		headers := make([]string, len(summaryHeaders))
		for i, h := range summaryHeaders {
			headers[i] = strings.ToUpper(h)
		}
		t.Headers(headers...)
	}
	for _, item := range items {
		t.Row(summaryRow(item)...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeSummariesTSV(w io.Writer, items []model.ExportSummary, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, strings.Join(summaryHeaders, "\t")); err != nil {
			return err
		}
	}

	for _, item := range items {
		if _, err := fmt.Fprintln(w, strings.Join(summaryRow(item), "\t")); err != nil {
			return err
		}
	}
	return nil
}

func writeSummariesJSON(w io.Writer, items []model.ExportSummary) error {
	records := make([]summaryRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeSummariesJSONL(w io.Writer, items []model.ExportSummary) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(toRecord(item)); err != nil {
			return err
		}
	}
	return nil
}

func summaryRow(item model.ExportSummary) []string {
	return []string{
		formatTime(item.StartedAt),
		strconv.Itoa(item.ExchangeCount),
		item.Responder,
		item.Path,
		escapeNewlines(item.Summary),
	}
}

func toRecord(item model.ExportSummary) summaryRecord {
	return summaryRecord{
		Path:          item.Path,
		Responder:     item.Responder,
		StartedAt:     formatTime(item.StartedAt),
		LastAt:        formatTime(item.LastAt),
		ExchangeCount: item.ExchangeCount,
		Summary:       item.Summary,
	}
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
