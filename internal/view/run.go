// Package view previews a chat export in the terminal.
package view

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/whee/cp2md/internal/format"
	"github.com/whee/cp2md/internal/parser"
)

// Options defines the configurable parameters for rendering a view.
type Options struct {
	Path string
	// Format is "rendered" (default), "markdown" or "raw".
	Format string
	Wrap   int
	// Last keeps only the final N exchanges when positive.
	Last         int
	Render       format.Options
	ForceColor   bool
	ForceNoColor bool
	NoPager      bool
	Out          io.Writer
	OutFile      *os.File
}

// Run renders an export according to the provided options.
func Run(opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	formatMode := strings.ToLower(opts.Format)
	if formatMode == "" {
		formatMode = "rendered"
	}

	if formatMode == "raw" {
		return copyFile(opts.Out, opts.Path)
	}

	conv, err := parser.ReadFile(opts.Path)
	if err != nil {
		return err
	}
	if opts.Last > 0 && len(conv.Exchanges) > opts.Last {
		conv.Exchanges = conv.Exchanges[len(conv.Exchanges)-opts.Last:]
	}
	markdown := format.Markdown(conv, opts.Render)

	switch formatMode {
	case "markdown":
		_, err := io.WriteString(opts.Out, markdown)
		return err

	case "rendered":
		colorEnabled := resolveColorChoice(opts)
		width := determineWidth(opts.OutFile, opts.Wrap)

		text, err := renderTerminal(markdown, width, colorEnabled)
		if err != nil {
			return err
		}
		if !opts.NoPager && opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
			return pipeThroughPager(text, colorEnabled)
		}
		_, err = io.WriteString(opts.Out, text)
		return err

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func renderTerminal(markdown string, width int, colorEnabled bool) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if colorEnabled {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(text string, colorEnabled bool) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()         //nolint:errcheck
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	_, err = io.Copy(dst, f)
	return err
}
