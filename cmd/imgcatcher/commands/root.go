package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwygoda/imgcatcher/internal/config"
	"github.com/cwygoda/imgcatcher/internal/domain"
)

var (
	flagCfg    = config.Default()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "imgcatcher [flags] <URL>",
	Short: "imgcatcher downloads every image referenced on a single web page.",
	Long: `imgcatcher fetches one HTML page, extracts the image URLs it references,
and downloads them into a directory with deterministic sequential names.
Every action is recorded in an append-only run log next to the images.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		setupLogging(cfg.Verbose)

		pageURL, err := pageURLFromArgs(args, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg.PageURL = pageURL

		return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&flagCfg.Pad, "pad", "p", flagCfg.Pad, "width of the zero-padded sequence field")
	f.StringVarP(&flagCfg.OutputDir, "out", "o", flagCfg.OutputDir, "output directory, created if absent")
	f.StringVarP(&flagCfg.Prefix, "prefix", "s", flagCfg.Prefix, "static filename prefix")
	f.StringVarP(&flagCfg.UserAgent, "user-agent", "u", flagCfg.UserAgent, "User-Agent header sent on every fetch")
	f.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "mirror run-log lines to the console")
	f.BoolVarP(&flagCfg.KeepList, "keep-list", "k", false, "keep the candidate URL list artifact")
	f.IntVarP(&flagCfg.Workers, "workers", "w", flagCfg.Workers, "concurrent downloads")
	f.DurationVarP(&flagCfg.Timeout, "timeout", "t", flagCfg.Timeout, "per-request timeout")
	f.StringSliceVarP(&flagCfg.Extensions, "ext", "e", flagCfg.Extensions, "image extensions to accept")
	f.BoolVarP(&flagCfg.UseRegex, "regex", "r", false, "use regex extraction instead of DOM parsing")
	f.BoolVarP(&flagCfg.AssumeYes, "yes", "y", false, "skip confirmation prompts")
	f.StringVar(&flagCfg.HistoryDB, "history", "", "record outcomes to a sqlite database at this path")
	f.StringVar(&configPath, "config", "", "TOML config file (flags override)")
}

// ExecuteContext runs the CLI; any error exits with status 1.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildConfig assembles the run configuration: defaults, then config
// file for flags not given on the command line, then env overrides.
func buildConfig(cmd *cobra.Command) config.Config {
	cfg := flagCfg
	if configPath != "" {
		fileCfg := config.Default()
		if err := fileCfg.ApplyFile(configPath); err != nil {
			slog.Warn("config file ignored", "error", err)
		} else {
			flags := cmd.Flags()
			if !flags.Changed("out") {
				cfg.OutputDir = fileCfg.OutputDir
			}
			if !flags.Changed("pad") {
				cfg.Pad = fileCfg.Pad
			}
			if !flags.Changed("prefix") {
				cfg.Prefix = fileCfg.Prefix
			}
			if !flags.Changed("user-agent") {
				cfg.UserAgent = fileCfg.UserAgent
			}
			if !flags.Changed("workers") {
				cfg.Workers = fileCfg.Workers
			}
			if !flags.Changed("timeout") {
				cfg.Timeout = fileCfg.Timeout
			}
			if !flags.Changed("ext") {
				cfg.Extensions = fileCfg.Extensions
			}
			if !flags.Changed("regex") {
				cfg.UseRegex = fileCfg.UseRegex
			}
			if !flags.Changed("history") {
				cfg.HistoryDB = fileCfg.HistoryDB
			}
		}
	}
	cfg.ApplyEnv()
	return cfg
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// pageURLFromArgs takes the positional URL or prompts for one. A second
// invalid entry is fatal.
func pageURLFromArgs(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 0 {
		if err := domain.ValidatePageURL(args[0]); err != nil {
			return "", fmt.Errorf("%w: %q (must be http:// or https://)", err, args[0])
		}
		return args[0], nil
	}

	reader := bufio.NewReader(in)
	for attempt := 0; attempt < 2; attempt++ {
		fmt.Fprint(out, "Page URL: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read page URL: %w", err)
		}
		url := strings.TrimSpace(line)
		if domain.ValidatePageURL(url) == nil {
			return url, nil
		}
		fmt.Fprintf(out, "invalid URL %q (must be http:// or https://)\n", url)
	}
	return "", fmt.Errorf("%w: no valid page URL entered", domain.ErrInvalidURL)
}
