package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/follow"
	"github.com/TimelordUK/mfollow/internal/logging"
	"github.com/TimelordUK/mfollow/internal/ui"
)

type rootOptions struct {
	configPath   string
	lines        int
	historyLines int
	full         bool
	noNotify     bool
	logFile      string
	logLevel     string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mfollow [file]",
		Short: "Follow a growing log file while loading its history in the background",
		Long: `mfollow shows the last lines of a file, keeps appending new lines as they
are written and loads older content backward in the background.

When stdout is not a terminal the file is streamed instead: the last lines
are printed and new lines follow, without history.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, opts, path)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is "+config.GetConfigPath()+")")
	flags.IntVarP(&opts.lines, "lines", "n", 0, "number of recent lines shown on open")
	flags.IntVar(&opts.historyLines, "history-lines", 0, "lines loaded per history batch")
	flags.BoolVar(&opts.full, "full", false, "read the whole file forward instead of backfilling history")
	flags.BoolVar(&opts.noNotify, "no-notify", false, "poll only, without file change notifications")
	flags.StringVar(&opts.logFile, "log-file", "", "write diagnostics to this file (or stderr)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lines") {
		cfg.Follow.InitialLines = opts.lines
	}
	if flags.Changed("history-lines") {
		cfg.Follow.HistoryLines = opts.historyLines
	}
	if flags.Changed("full") {
		cfg.Follow.FullFile = opts.full
	}
	if opts.noNotify {
		cfg.Follow.Notify = false
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	cfg.Normalize()
	return cfg, nil
}

func run(cmd *cobra.Command, opts *rootOptions, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	out := os.Stdout
	interactive := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())

	logOpts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Path: cfg.Logging.File}
	if !interactive && logOpts.Path == "" {
		logOpts.Writer = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer closer.Close()

	followOpts := follow.OptionsFromConfig(cfg.Follow, logger)
	if !interactive {
		if path == "" {
			return fmt.Errorf("a file is required when output is not a terminal")
		}
		return runHeadless(cmd.Context(), out, path, followOpts, logger)
	}
	return runTUI(cfg, path, followOpts, logger)
}

func runTUI(cfg *config.Config, path string, opts follow.Options, logger *slog.Logger) error {
	sink := ui.NewProgramSink()
	streamer := follow.NewStreamer(sink, opts)
	model := ui.NewModel(cfg, streamer, path)

	p := tea.NewProgram(model, tea.WithAltScreen())
	sink.Attach(p)

	_, runErr := p.Run()
	if err := model.Close(); err != nil {
		logger.Warn("stop on exit", "error", err)
	}
	return runErr
}

func runHeadless(ctx context.Context, out io.Writer, path string, opts follow.Options, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts.NoHistory = true
	sink := ui.NewStreamSink(out, logger)
	streamer := follow.NewStreamer(sink, opts)
	if err := streamer.Open(path); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-sink.Failed():
	}
	if err := streamer.Stop(); err != nil {
		return err
	}
	return sink.Err()
}
