package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whee/cp2md/internal/config"
	"github.com/whee/cp2md/internal/format"
	"github.com/whee/cp2md/internal/parser"
	"github.com/whee/cp2md/internal/store"
	"github.com/whee/cp2md/internal/view"
)

func newListCmd(a *app) *cobra.Command {
	var (
		afterStr     string
		beforeStr    string
		responder    string
		limit        int
		noHeader     bool
		summaryWidth int
	)

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List exports under a directory, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}
			logger := a.logger(cmd, settings)

			var after, before *time.Time
			if afterStr != "" {
				t, err := time.Parse(time.RFC3339, afterStr)
				if err != nil {
					return fmt.Errorf("invalid --after value: %w", err)
				}
				after = &t
			}
			if beforeStr != "" {
				t, err := time.Parse(time.RFC3339, beforeStr)
				if err != nil {
					return fmt.Errorf("invalid --before value: %w", err)
				}
				before = &t
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			result, err := store.ListExports(store.ListOptions{
				Root:       root,
				Responder:  responder,
				After:      after,
				Before:     before,
				Limit:      limit,
				MaxSummary: summaryWidth,
			})
			if err != nil {
				return err
			}

			for _, warn := range result.Warnings {
				logger.Warn("skipped export", "err", warn)
			}

			return format.WriteSummaries(cmd.OutOrStdout(), result.Summaries, !noHeader, strings.ToLower(settings.ListFormat))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&afterStr, "after", "", "include exports starting on/after the given RFC3339 timestamp")
	flags.StringVar(&beforeStr, "before", "", "include exports starting on/before the given RFC3339 timestamp")
	flags.StringVar(&responder, "responder", "", "include only exports answered by this responder")
	flags.IntVar(&limit, "limit", 0, "limit number of exports returned (0 means no limit)")
	flags.String("format", "table", "output format: table, tsv, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for table and tsv output")
	flags.IntVar(&summaryWidth, "summary-width", 80, "maximum characters included in the summary column")
	_ = a.v.BindPFlag(config.KeyListFormat, flags.Lookup("format"))

	return cmd
}

func newViewCmd(a *app) *cobra.Command {
	var (
		formatFlag string
		wrap       int
		last       int
		color      bool
		noColor    bool
		noPager    bool
	)

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Preview an export as rendered Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}

			opts := view.Options{
				Path:         args[0],
				Format:       formatFlag,
				Wrap:         wrap,
				Last:         last,
				Render:       settings.Render,
				ForceColor:   color,
				ForceNoColor: noColor,
				NoPager:      noPager,
				Out:          cmd.OutOrStdout(),
			}
			if f, ok := cmd.OutOrStdout().(*os.File); ok {
				opts.OutFile = f
			}
			return view.Run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "rendered", "output format: rendered, markdown, or raw")
	flags.IntVar(&wrap, "wrap", 0, "wrap rendered output at the given column width")
	flags.IntVar(&last, "last", 0, "show only the last N exchanges (0 means all)")
	flags.BoolVar(&color, "color", false, "force colored output")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&noPager, "no-pager", false, "write to stdout even when it is a terminal")
	cmd.MarkFlagsMutuallyExclusive("color", "no-color")

	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show export metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			conv, err := parser.ReadFile(path)
			if err != nil {
				return err
			}
			summary := parser.Summarize(path, conv)

			payload := struct {
				Path            string `json:"path"`
				Responder       string `json:"responder"`
				StartedAt       string `json:"started_at"`
				LastAt          string `json:"last_at"`
				ExchangeCount   int    `json:"exchange_count"`
				DurationSeconds int    `json:"duration_seconds"`
				Summary         string `json:"summary"`
			}{
				Path:            path,
				Responder:       summary.Responder,
				StartedAt:       formatTime(summary.StartedAt),
				LastAt:          formatTime(summary.LastAt),
				ExchangeCount:   summary.ExchangeCount,
				DurationSeconds: durationSeconds(summary.StartedAt, summary.LastAt),
				Summary:         summary.Summary,
			}

			switch strings.ToLower(formatFlag) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "text":
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path: %s\n", payload.Path)
				fmt.Fprintf(out, "Responder: %s\n", payload.Responder)
				fmt.Fprintf(out, "Started At: %s\n", payload.StartedAt)
				fmt.Fprintf(out, "Last At: %s\n", payload.LastAt)
				fmt.Fprintf(out, "Exchanges: %d\n", payload.ExchangeCount)
				fmt.Fprintf(out, "Duration: %s\n", formatDuration(payload.DurationSeconds))
				fmt.Fprintf(out, "Summary: %s\n", payload.Summary)
				return nil
			default:
				return fmt.Errorf("unsupported format: %s", formatFlag)
			}
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "text", "output format: json or text")

	return cmd
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

func durationSeconds(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Seconds())
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
