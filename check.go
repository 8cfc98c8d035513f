package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lukemcguire/sitecheck/config"
	"github.com/lukemcguire/sitecheck/crawler"
	"github.com/lukemcguire/sitecheck/result"
	"github.com/lukemcguire/sitecheck/tui"
)

// addCheckFlags registers the flags of the check run.
func addCheckFlags(cmd *cobra.Command) {
	def := config.Default()
	flags := cmd.Flags()

	flags.StringP("config", "c", "",
		"Configuration file path (default: .sitecheck.yaml, then the XDG config directory)")
	flags.StringArrayP("page", "p", nil,
		`Page path to check; repeat for several (replaces the configured list, "" is the root)`)
	flags.StringP("format", "f", def.Format,
		"Output format: text, table, json, csv or markdown")
	flags.StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	flags.Int("concurrency", def.Concurrency,
		"References of one page checked at the same time")
	flags.Duration("page-timeout", def.PageTimeout,
		"Timeout for each page load")
	flags.Duration("resource-timeout", def.ResourceTimeout,
		"Timeout for each link and image check")
	flags.String("nav-selector", def.NavSelector,
		"CSS selector for navigation links")
	flags.String("user-agent", def.UserAgent,
		"User-Agent header sent with every request")
	flags.Bool("respect-robots", false,
		"Skip references disallowed by robots.txt")
	flags.Bool("plain", false,
		"Disable the interactive progress display")
	flags.Bool("no-color", false,
		"Disable colored output")
}

// runCheckCmd executes the site check.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	plain, _ := cmd.Flags().GetBool("plain")
	noColor, _ := cmd.Flags().GetBool("no-color")
	outputPath, _ := cmd.Flags().GetString("output")

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := createOutputFile(outputPath)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // Sync below reports write failures
		out = f
		defer func() {
			if syncErr := f.Sync(); syncErr != nil {
				slog.Warn("sync report file", slog.Any("error", syncErr))
			}
		}()
	}

	interactive := cfg.Format == config.FormatText && !plain && outputPath == "" && isTerminal(out)

	logger := discardLogger()
	if !interactive || getVerboseFlag(cmd) {
		logger = setupLogger(getVerboseFlag(cmd))
	}
	slog.SetDefault(logger)
	if configPath != "" {
		logger.Debug("loaded configuration", slog.String("path", configPath))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactive {
		return runInteractive(ctx, cfg, logger)
	}

	rep, runErr := runPlain(ctx, cfg, logger)
	if rep == nil {
		return runErr
	}

	opts := result.PrintOptions{Color: !noColor && !color.NoColor && isTerminal(out)}
	if err := writeReport(out, rep, cfg.Format, opts); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}
	if rep.Summary.ExitCode() != 0 {
		return ErrChecksFailed
	}
	return nil
}

// buildConfig merges the configuration file, flags and the base URL argument.
// Flags only override the file when set explicitly. The returned path is the
// configuration file that was loaded, if any.
func buildConfig(cmd *cobra.Command, args []string) (config.Config, string, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, usedPath, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, "", err
	}
	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}
	if flags.Changed("page") {
		if cfg.Pages, err = flags.GetStringArray("page"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("page-timeout") {
		if cfg.PageTimeout, err = flags.GetDuration("page-timeout"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("resource-timeout") {
		if cfg.ResourceTimeout, err = flags.GetDuration("resource-timeout"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("nav-selector") {
		if cfg.NavSelector, err = flags.GetString("nav-selector"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return config.Config{}, "", err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
			return config.Config{}, "", err
		}
	}

	return cfg, usedPath, nil
}

// runPlain runs the checks without any progress display.
func runPlain(ctx context.Context, cfg config.Config, logger *slog.Logger) (*result.Report, error) {
	c, err := crawler.New(cfg.CrawlerConfig(&http.Client{}, logger), nil)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx)
}

// runInteractive runs the checks under the Bubble Tea progress display, which
// renders the final report itself.
func runInteractive(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan crawler.CrawlEvent, 100)
	c, err := crawler.New(cfg.CrawlerConfig(&http.Client{}, logger), progressCh)
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(ctx, cancel, c, progressCh))
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("run progress display: %w", err)
	}

	final, ok := finalModel.(tui.Model)
	if !ok || final.Report() == nil {
		if ctx.Err() != nil {
			return fmt.Errorf("site check interrupted: %w", ctx.Err())
		}
		return errors.New("site check ended without a report")
	}
	if final.Err() != nil {
		return final.Err()
	}
	if final.Failed() {
		return ErrChecksFailed
	}
	return nil
}

// writeReport renders rep to w in the requested format.
func writeReport(w io.Writer, rep *result.Report, format string, opts result.PrintOptions) error {
	switch format {
	case config.FormatText:
		result.PrintReport(w, rep, opts)
		return nil
	case config.FormatTable:
		result.WriteTable(w, rep)
		return nil
	case config.FormatJSON:
		return result.WriteJSON(w, rep)
	case config.FormatCSV:
		return result.WriteCSV(w, rep.Records)
	case config.FormatMarkdown:
		return result.WriteMarkdown(w, rep)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

// createOutputFile creates path and any missing parent directories.
func createOutputFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-provided report path
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, _ = cmd.Root().PersistentFlags().GetBool("verbose")
	}
	return verbose
}

// setupLogger creates a structured logger on stderr based on verbosity.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// discardLogger keeps warnings from drawing over the progress display.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
