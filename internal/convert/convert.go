// Package convert turns batches of chat exports into Markdown files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/whee/cp2md/internal/format"
	"github.com/whee/cp2md/internal/parser"
	"github.com/whee/cp2md/internal/store"
)

// Stdout is the output value that selects standard output.
const Stdout = "-"

const outputPerm = 0o644

var (
	ErrNoInputs         = errors.New("at least one input file or directory is required")
	ErrMissingOutput    = errors.New("missing required option: --output")
	ErrMultipleToStdout = errors.New("cannot output multiple files to stdout without --concat")
	ErrNoInputFiles     = errors.New("no export files found")
)

// Options describes one conversion run.
type Options struct {
	Inputs []string
	// Output is a directory, Stdout, or with Concat a single file.
	Output string
	Concat bool
	Force  bool
	DryRun bool
	Render format.Options
	// Stdout receives documents when Output is Stdout. Defaults to os.Stdout.
	Stdout io.Writer
}

// Report lists what a run did with each output.
type Report struct {
	Written []string
	Skipped []string
	Failed  []string
}

// Run converts the inputs described by opts. A document that cannot be read
// or decoded is logged and the rest of the batch still runs; the returned
// error then combines every such failure.
func Run(ctx context.Context, opts Options, logger *log.Logger) (Report, error) {
	if len(opts.Inputs) == 0 {
		return Report{}, ErrNoInputs
	}
	if opts.Output == "" {
		return Report{}, ErrMissingOutput
	}
	if err := opts.Render.Validate(); err != nil {
		return Report{}, err
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	files, err := store.CollectInputs(opts.Inputs)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{}, ErrNoInputFiles
	}
	logger.Debug("collected inputs", "count", len(files))

	switch {
	case opts.Concat:
		return runConcat(ctx, files, opts, logger)
	case opts.Output == Stdout:
		if len(files) != 1 {
			return Report{}, ErrMultipleToStdout
		}
		return runStdout(ctx, files[0], opts, logger)
	default:
		return runDirectory(ctx, files, opts, logger)
	}
}

func runStdout(ctx context.Context, file string, opts Options, logger *log.Logger) (Report, error) {
	if opts.DryRun {
		logger.Printf("Would output %s", file)
		return Report{}, nil
	}

	docs, err := renderAll(ctx, []string{file}, opts.Render)
	if err != nil {
		return Report{}, err
	}
	if docs[0].err != nil {
		return Report{Failed: []string{file}}, docs[0].err
	}
	if _, err := io.WriteString(opts.Stdout, docs[0].markdown); err != nil {
		return Report{}, fmt.Errorf("write stdout: %w", err)
	}
	return Report{Written: []string{Stdout}}, nil
}

func runDirectory(ctx context.Context, files []string, opts Options, logger *log.Logger) (Report, error) {
	dir := opts.Output
	targets := make([]string, len(files))
	for i, file := range files {
		targets[i] = filepath.Join(dir, outputName(file))
	}

	var report Report
	if opts.DryRun {
		for _, target := range targets {
			logger.Printf("Would write %s", target)
		}
		return report, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	docs, err := renderAll(ctx, files, opts.Render)
	if err != nil {
		return report, err
	}

	var errs error
	for i, doc := range docs {
		target := targets[i]
		if doc.err != nil {
			logger.Error("Failed to convert", "path", files[i], "err", doc.err)
			report.Failed = append(report.Failed, files[i])
			errs = multierr.Append(errs, doc.err)
			continue
		}

		// Outputs written earlier in this run count as existing.
		if exists(target) && !opts.Force {
			logger.Warnf("Skipping %s (already exists, use --force to overwrite)", target)
			report.Skipped = append(report.Skipped, target)
			continue
		}

		if err := os.WriteFile(target, []byte(doc.markdown), outputPerm); err != nil {
			err = fmt.Errorf("write %s: %w", target, err)
			logger.Error("Failed to write", "path", target, "err", err)
			report.Failed = append(report.Failed, files[i])
			errs = multierr.Append(errs, err)
			continue
		}
		logger.Infof("Wrote %s", target)
		report.Written = append(report.Written, target)
	}
	return report, errs
}

func runConcat(ctx context.Context, files []string, opts Options, logger *log.Logger) (Report, error) {
	var report Report
	toStdout := opts.Output == Stdout
	target := opts.Output

	if opts.DryRun {
		if toStdout {
			logger.Printf("Would output %d files concatenated", len(files))
		} else {
			logger.Printf("Would write %s (%d files concatenated)", target, len(files))
		}
		return report, nil
	}
	if !toStdout && exists(target) && !opts.Force {
		logger.Warnf("Skipping %s (already exists, use --force to overwrite)", target)
		report.Skipped = append(report.Skipped, target)
		return report, nil
	}

	docs, err := renderAll(ctx, files, opts.Render)
	if err != nil {
		return report, err
	}

	var errs error
	parts := make([]string, 0, len(docs))
	for i, doc := range docs {
		if doc.err != nil {
			logger.Error("Failed to convert", "path", files[i], "err", doc.err)
			report.Failed = append(report.Failed, files[i])
			errs = multierr.Append(errs, doc.err)
			continue
		}
		parts = append(parts, doc.markdown)
	}
	if len(parts) == 0 {
		return report, errs
	}
	output := format.JoinDocuments(parts)

	if toStdout {
		if _, err := io.WriteString(opts.Stdout, output); err != nil {
			return report, multierr.Append(errs, fmt.Errorf("write stdout: %w", err))
		}
		report.Written = append(report.Written, Stdout)
		return report, errs
	}

	if parent := filepath.Dir(target); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return report, multierr.Append(errs, fmt.Errorf("create output directory: %w", err))
		}
	}
	if err := os.WriteFile(target, []byte(output), outputPerm); err != nil {
		return report, multierr.Append(errs, fmt.Errorf("write %s: %w", target, err))
	}
	logger.Infof("Wrote %s (%d files)", target, len(parts))
	report.Written = append(report.Written, target)
	return report, errs
}

type rendered struct {
	markdown string
	err      error
}

// renderAll decodes and renders files concurrently. Results keep the input
// order. Per-file failures are returned in the results; the error is only
// set when ctx is cancelled.
func renderAll(ctx context.Context, files []string, opts format.Options) ([]rendered, error) {
	results := make([]rendered, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			conv, err := parser.ReadFile(file)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].markdown = format.Markdown(conv, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// outputName maps an input path to <stem>.md.
func outputName(file string) string {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + ".md"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
