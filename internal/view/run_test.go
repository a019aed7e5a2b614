package view

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/whee/cp2md/internal/format"
)

const sampleExport = `{"responderUsername":"GitHub Copilot","requests":[` +
	`{"modelId":"gpt-4o","message":{"text":"first question"},"response":[{"value":"first answer"}]},` +
	`{"modelId":"gpt-4o","message":{"text":"second question"},"response":[{"value":"**second** answer"}]}` +
	`]}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestRunFormatRaw(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	opts := Options{
		Path:   path,
		Format: "raw",
		Out:    &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if buf.String() != sampleExport {
		t.Fatalf("raw output mismatch\nwant:\n%q\n\ngot:\n%q", sampleExport, buf.String())
	}
}

func TestRunFormatMarkdown(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	opts := Options{
		Path:   path,
		Format: "markdown",
		Render: format.DefaultOptions(),
		Out:    &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# Copilot Chat\n\n## User\n\n*gpt-4o*\n\nfirst question") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}
	if strings.Count(out, "## User") != 2 {
		t.Fatalf("expected two exchanges:\n%s", out)
	}
}

func TestRunLastExchanges(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	opts := Options{
		Path:   path,
		Format: "markdown",
		Last:   1,
		Out:    &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "first question") || !strings.Contains(out, "second question") {
		t.Fatalf("expected only the last exchange:\n%s", out)
	}
}

func TestRunFormatRendered(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	opts := Options{
		Path:         path,
		Wrap:         60,
		Render:       format.DefaultOptions(),
		ForceNoColor: true,
		Out:          &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Copilot Chat", "first question", "second"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestRunInvalidFormat(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	err := Run(Options{Path: path, Format: "html", Out: &buf})
	if err == nil {
		t.Fatal("Expected error for invalid format, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("Expected 'unsupported format' error, got: %v", err)
	}
}

func TestRunMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(Options{Path: filepath.Join(t.TempDir(), "missing.json"), Out: &buf}); err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

func TestDetermineWidth(t *testing.T) {
	if got := determineWidth(nil, 42); got != 42 {
		t.Fatalf("explicit wrap ignored: %d", got)
	}

	t.Setenv("COLUMNS", "132")
	if got := determineWidth(nil, 0); got != 132 {
		t.Fatalf("COLUMNS ignored: %d", got)
	}

	t.Setenv("COLUMNS", "")
	if got := determineWidth(nil, 0); got != 80 {
		t.Fatalf("expected default width, got %d", got)
	}
}

func TestResolveColorChoice(t *testing.T) {
	var buf bytes.Buffer
	if !resolveColorChoice(Options{ForceColor: true, Out: &buf}) {
		t.Fatal("ForceColor should enable color")
	}
	if resolveColorChoice(Options{ForceNoColor: true, Out: &buf}) {
		t.Fatal("ForceNoColor should disable color")
	}
	if resolveColorChoice(Options{Out: &buf}) {
		t.Fatal("non-file writers should not get color")
	}
}
