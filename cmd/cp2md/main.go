package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/whee/cp2md/internal/config"
	"github.com/whee/cp2md/internal/convert"
	"github.com/whee/cp2md/internal/logging"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cp2md: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by the root command and its subcommands.
type app struct {
	v          *viper.Viper
	display    *displayFlags
	configPath string
}

func (a *app) settings() (config.Settings, error) {
	a.display.apply(a.v)
	return config.Resolve(a.v)
}

func (a *app) logger(cmd *cobra.Command, s config.Settings) *log.Logger {
	return logging.New(cmd.ErrOrStderr(), s.Quiet, s.Debug)
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), display: newDisplayFlags()}
	var showVersion bool

	cmd := &cobra.Command{
		Use:   "cp2md [flags] -o <OUTPUT> <INPUT>...",
		Short: "Convert GitHub Copilot chat exports to Markdown",
		Long: `Convert GitHub Copilot chat exports to Markdown.

Inputs may be JSON files, directories (searched recursively for .json files)
or glob patterns such as "exports/**/*.json".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			return config.ReadFile(a.v, a.configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cp2md %s\n", version)
				return err
			}
			if len(args) == 0 && cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}

			settings, err := a.settings()
			if err != nil {
				return err
			}

			_, err = convert.Run(cmd.Context(), convert.Options{
				Inputs: args,
				Output: settings.Output,
				Concat: settings.Concat,
				Force:  settings.Force,
				DryRun: settings.DryRun,
				Render: settings.Render,
				Stdout: cmd.OutOrStdout(),
			}, a.logger(cmd, settings))
			return err
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cp2md/cp2md.yaml)")
	persistent.BoolP(config.KeyQuiet, "q", false, "suppress progress messages")
	persistent.Bool(config.KeyDebug, false, "enable debug logging")
	persistent.Int(config.KeyHeadingOffset, 0, "shift heading levels by N (0-5)")
	a.display.register(persistent)

	flags := cmd.Flags()
	flags.StringP(config.KeyOutput, "o", "", "output directory (or file with --concat, or - for stdout)")
	flags.Bool(config.KeyConcat, false, "combine all inputs into a single output")
	flags.BoolP(config.KeyDryRun, "n", false, "show what would be processed without writing")
	flags.BoolP(config.KeyForce, "f", false, "overwrite existing output files")
	flags.BoolVarP(&showVersion, "version", "V", false, "print version")

	for _, key := range []string{config.KeyQuiet, config.KeyDebug, config.KeyHeadingOffset} {
		_ = a.v.BindPFlag(key, persistent.Lookup(key))
	}
	for _, key := range []string{config.KeyOutput, config.KeyConcat, config.KeyDryRun, config.KeyForce} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newViewCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cp2md %s\n", version)
			return err
		},
	}
}
