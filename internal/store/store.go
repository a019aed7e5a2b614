// Package store finds chat export files on disk.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/whee/cp2md/internal/model"
	"github.com/whee/cp2md/internal/parser"
)

const exportExt = ".json"

// ErrNoMatch is returned when a glob pattern matches no files.
var ErrNoMatch = errors.New("no files match pattern")

// CollectInputs expands inputs into the list of export files to convert.
// Files are taken as given, directories are searched recursively for .json
// files in name order, and glob patterns (including **) are expanded. A file
// reached more than once is kept at its first position.
func CollectInputs(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}

	for _, input := range inputs {
		expanded, err := expandInput(input)
		if err != nil {
			return nil, err
		}
		for _, path := range expanded {
			add(path)
		}
	}
	return files, nil
}

func expandInput(input string) ([]string, error) {
	info, err := os.Stat(input)
	switch {
	case err == nil && info.IsDir():
		return walkExports(input)
	case err == nil:
		return []string{input}, nil
	case errors.Is(err, fs.ErrNotExist) && isPattern(input):
		return globExports(input)
	default:
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}
}

func isPattern(input string) bool {
	return strings.ContainsAny(input, "*?[{") && doublestar.ValidatePattern(filepath.ToSlash(input))
}

// walkExports returns every .json file below dir. Any error reading the tree
// fails the whole walk.
func walkExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", path, walkErr)
		}
		if d.IsDir() || !isExport(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func globExports(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", match, err)
		}
		if !info.IsDir() {
			files = append(files, match)
			continue
		}
		nested, err := walkExports(match)
		if err != nil {
			return nil, err
		}
		files = append(files, nested...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}
	return files, nil
}

func isExport(name string) bool {
	return filepath.Ext(name) == exportExt
}

// ListOptions controls how exports are enumerated.
type ListOptions struct {
	Root       string
	Responder  string
	After      *time.Time
	Before     *time.Time
	Limit      int
	MaxSummary int
}

// ListResult contains export summaries and non-fatal warnings.
type ListResult struct {
	Summaries []model.ExportSummary
	Warnings  []error
}

// ListExports summarizes the exports under Root, newest first. Files that
// cannot be read or decoded are reported as warnings.
func ListExports(opts ListOptions) (ListResult, error) {
	root := opts.Root
	if root == "" {
		return ListResult{}, errors.New("root directory is required")
	}

	var result ListResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() || !isExport(d.Name()) {
			return nil
		}

		conv, err := parser.ReadFile(path)
		if err != nil {
			result.Warnings = append(result.Warnings, err)
			return nil
		}
		summary := parser.Summarize(path, conv)

		if opts.Responder != "" && !strings.EqualFold(summary.Responder, opts.Responder) {
			return nil
		}
		if opts.After != nil && summary.StartedAt.Before(*opts.After) {
			return nil
		}
		if opts.Before != nil && summary.StartedAt.After(*opts.Before) {
			return nil
		}

		if opts.MaxSummary > 0 {
			summary.Summary = truncate(summary.Summary, opts.MaxSummary)
		}

		result.Summaries = append(result.Summaries, summary)
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.SliceStable(result.Summaries, func(i, j int) bool {
		a, b := result.Summaries[i], result.Summaries[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		return a.Path < b.Path
	})

	if opts.Limit > 0 && len(result.Summaries) > opts.Limit {
		result.Summaries = result.Summaries[:opts.Limit]
	}

	return result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
