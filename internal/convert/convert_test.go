package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whee/cp2md/internal/format"
	"github.com/whee/cp2md/internal/logging"
	"github.com/whee/cp2md/internal/parser"
)

func writeExport(t *testing.T, dir, name, message string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := fmt.Sprintf(`{"responderUsername":"GitHub Copilot","requests":[{"message":{"text":%q},"response":[{"value":"ok"}]}]}`, message)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newOptions(inputs []string, output string) Options {
	return Options{Inputs: inputs, Output: output, Render: format.DefaultOptions()}
}

func TestRunDirectory(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	writeExport(t, in, "first.json", "one")
	writeExport(t, in, "second.json", "two")

	var logs bytes.Buffer
	report, err := Run(context.Background(), newOptions([]string{in}, out), logging.New(&logs, false, false))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(out, "first.md"), filepath.Join(out, "second.md")}, report.Written)
	data, err := os.ReadFile(filepath.Join(out, "first.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Copilot Chat\n\n## User\n\none\n\n"), string(data))
	assert.Contains(t, logs.String(), "Wrote "+filepath.Join(out, "second.md"))
}

func TestRunSkipsExistingWithoutForce(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	input := writeExport(t, in, "chat.json", "hello")
	target := filepath.Join(out, "chat.md")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0o644))

	var logs bytes.Buffer
	report, err := Run(context.Background(), newOptions([]string{input}, out), logging.New(&logs, true, false))
	require.NoError(t, err)
	assert.Equal(t, []string{target}, report.Skipped)
	assert.Contains(t, logs.String(), "Skipping "+target+" (already exists, use --force to overwrite)")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	opts := newOptions([]string{input}, out)
	opts.Force = true
	report, err = Run(context.Background(), opts, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{target}, report.Written)

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestRunDuplicateStemsDoNotOverwrite(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(in, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(in, "b"), 0o755))
	writeExport(t, filepath.Join(in, "a"), "chat.json", "from a")
	writeExport(t, filepath.Join(in, "b"), "chat.json", "from b")
	out := t.TempDir()

	report, err := Run(context.Background(), newOptions([]string{in}, out), logging.Discard())
	require.NoError(t, err)
	assert.Len(t, report.Written, 1)
	assert.Len(t, report.Skipped, 1)

	data, err := os.ReadFile(filepath.Join(out, "chat.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from a")
}

func TestRunDryRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeExport(t, in, "chat.json", "hello")

	opts := newOptions([]string{in}, out)
	opts.DryRun = true

	var logs bytes.Buffer
	report, err := Run(context.Background(), opts, logging.New(&logs, true, false))
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Contains(t, logs.String(), "Would write "+filepath.Join(out, "chat.md"))

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "dry run created the output directory")
}

func TestRunQuietHidesProgress(t *testing.T) {
	in := t.TempDir()
	writeExport(t, in, "chat.json", "hello")

	var logs bytes.Buffer
	_, err := Run(context.Background(), newOptions([]string{in}, t.TempDir()), logging.New(&logs, true, false))
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "Wrote")
}

func TestRunContinuesAfterFailure(t *testing.T) {
	in := t.TempDir()
	broken := filepath.Join(in, "a-broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"requests":[]}`), 0o644))
	writeExport(t, in, "b-good.json", "fine")
	out := t.TempDir()

	var logs bytes.Buffer
	report, err := Run(context.Background(), newOptions([]string{in}, out), logging.New(&logs, false, false))
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrMalformed)
	assert.Contains(t, err.Error(), broken)

	assert.Equal(t, []string{broken}, report.Failed)
	assert.Equal(t, []string{filepath.Join(out, "b-good.md")}, report.Written)
	assert.Contains(t, logs.String(), "Failed to convert")
}

func TestRunStdoutSingleFile(t *testing.T) {
	in := t.TempDir()
	input := writeExport(t, in, "chat.json", "hello")

	var stdout bytes.Buffer
	opts := newOptions([]string{input}, Stdout)
	opts.Stdout = &stdout

	_, err := Run(context.Background(), opts, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "# Copilot Chat\n\n## User\n\nhello\n\n## Assistant\n\nok\n\n", stdout.String())
}

func TestRunStdoutRejectsMultipleFiles(t *testing.T) {
	in := t.TempDir()
	writeExport(t, in, "a.json", "a")
	writeExport(t, in, "b.json", "b")

	_, err := Run(context.Background(), newOptions([]string{in}, Stdout), logging.Discard())
	assert.ErrorIs(t, err, ErrMultipleToStdout)
}

func TestRunConcatStdoutKeepsOrder(t *testing.T) {
	in := t.TempDir()
	var inputs []string
	for i := 0; i < 20; i++ {
		inputs = append(inputs, writeExport(t, in, fmt.Sprintf("chat-%02d.json", i), fmt.Sprintf("message %02d", i)))
	}

	var stdout bytes.Buffer
	opts := newOptions(inputs, Stdout)
	opts.Concat = true
	opts.Stdout = &stdout

	_, err := Run(context.Background(), opts, logging.Discard())
	require.NoError(t, err)

	out := stdout.String()
	assert.Equal(t, 19, strings.Count(out, "\n---\n\n"))
	last := -1
	for i := 0; i < 20; i++ {
		pos := strings.Index(out, fmt.Sprintf("message %02d", i))
		require.Greater(t, pos, last, "document %d out of order", i)
		last = pos
	}
}

func TestRunConcatFile(t *testing.T) {
	in := t.TempDir()
	a := writeExport(t, in, "a.json", "first")
	b := writeExport(t, in, "b.json", "second")
	target := filepath.Join(t.TempDir(), "docs", "all.md")

	opts := newOptions([]string{a, b}, target)
	opts.Concat = true

	var logs bytes.Buffer
	report, err := Run(context.Background(), opts, logging.New(&logs, false, false))
	require.NoError(t, err)
	assert.Equal(t, []string{target}, report.Written)
	assert.Contains(t, logs.String(), "Wrote "+target+" (2 files)")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	docs := strings.Split(string(data), "\n---\n\n")
	require.Len(t, docs, 2)
	assert.Contains(t, docs[0], "first")
	assert.Contains(t, docs[1], "second")

	var skipLogs bytes.Buffer
	report, err = Run(context.Background(), opts, logging.New(&skipLogs, false, false))
	require.NoError(t, err)
	assert.Equal(t, []string{target}, report.Skipped)
	assert.Contains(t, skipLogs.String(), "Skipping "+target)
}

func TestRunConcatDryRun(t *testing.T) {
	in := t.TempDir()
	writeExport(t, in, "a.json", "first")
	writeExport(t, in, "b.json", "second")
	target := filepath.Join(t.TempDir(), "all.md")

	opts := newOptions([]string{in}, target)
	opts.Concat = true
	opts.DryRun = true

	var logs bytes.Buffer
	_, err := Run(context.Background(), opts, logging.New(&logs, false, false))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Would write "+target+" (2 files concatenated)")
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestRunConcatSkipsFailedDocuments(t *testing.T) {
	in := t.TempDir()
	good := writeExport(t, in, "good.json", "kept")
	bad := filepath.Join(in, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[]"), 0o644))

	var stdout bytes.Buffer
	opts := newOptions([]string{bad, good}, Stdout)
	opts.Concat = true
	opts.Stdout = &stdout

	report, err := Run(context.Background(), opts, logging.Discard())
	assert.ErrorIs(t, err, parser.ErrMalformed)
	assert.Equal(t, []string{bad}, report.Failed)
	assert.Contains(t, stdout.String(), "kept")
	assert.NotContains(t, stdout.String(), "---")
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, newOptions(nil, "out"), logging.Discard())
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = Run(ctx, newOptions([]string{"x.json"}, ""), logging.Discard())
	assert.ErrorIs(t, err, ErrMissingOutput)

	opts := newOptions([]string{"x.json"}, "out")
	opts.Render.HeadingOffset = 6
	_, err = Run(ctx, opts, logging.Discard())
	assert.ErrorContains(t, err, "heading offset")

	_, err = Run(ctx, newOptions([]string{t.TempDir()}, "out"), logging.Discard())
	assert.ErrorIs(t, err, ErrNoInputFiles)
}

func TestRunCancelled(t *testing.T) {
	in := t.TempDir()
	writeExport(t, in, "chat.json", "hello")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, newOptions([]string{in}, t.TempDir()), logging.Discard())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"chat.json":           "chat.md",
		"/a/b/export.v2.json": "export.v2.md",
		"noext":               "noext.md",
		"/d/.json":            ".json.md",
	}
	for in, want := range tests {
		assert.Equal(t, want, outputName(in), in)
	}
}
