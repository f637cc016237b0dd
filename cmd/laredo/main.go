package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/models"
	"github.com/civicgrab/laredo/output"
	"github.com/civicgrab/laredo/scraper"
)

const flowLogName = "laredo-flow-logs.json"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The orchestrating workflow gates the commit step on this code.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var waitSecs int

	cmd := &cobra.Command{
		Use:           "laredo",
		Short:         "Extract county records from a PrimeNG results table",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("wait") {
				cfg.Wait.StepTimeout = time.Duration(waitSecs) * time.Second
			}
			return run(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.StartURL, "start-url", cfg.StartURL, "direct URL to the results page")
	f.StringVar(&cfg.CountySlug, "county-slug", cfg.CountySlug, "slug used in output filenames and record ids")
	f.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory")
	f.IntVar(&waitSecs, "wait", int(cfg.Wait.StepTimeout/time.Second), "per-step wait budget in seconds")
	f.IntVar(&cfg.Walk.MaxPages, "max-pages", cfg.Walk.MaxPages, "pagination page limit")
	f.IntVar(&cfg.Mapper.MaxParties, "max-parties", cfg.Mapper.MaxParties, "number of Party fields (Party1..N)")
	f.IntVar(&cfg.Mapper.DaysBack, "days-back", cfg.Mapper.DaysBack, "skip Doc Date older than N days (0 disables)")
	f.StringVar(&cfg.Frame.CSS, "iframe-css", cfg.Frame.CSS, "CSS selector for the iframe containing the table")
	f.IntVar(&cfg.Frame.Index, "iframe-index", cfg.Frame.Index, "iframe index hint (-1 disables)")
	f.StringVar(&cfg.Table.CSS, "table-css", cfg.Table.CSS, "CSS selector for the table (overrides auto detection)")
	f.StringVar(&cfg.Mapper.FieldsFile, "fields-file", cfg.Mapper.FieldsFile, "YAML field-map override")
	f.BoolVar(&cfg.SkipCSV, "skip-csv", cfg.SkipCSV, "only write JSON (no CSV)")
	f.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "run the browser headless")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug|info|warn|error)")
	f.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format (json|text)")

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	initLogger(cfg.Log)

	slog.Info("laredo starting",
		"county", cfg.CountySlug,
		"out", cfg.OutDir,
		"maxPages", cfg.Walk.MaxPages,
		"maxParties", cfg.Mapper.MaxParties,
		"daysBack", cfg.Mapper.DaysBack,
		"headless", cfg.Browser.Headless,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flow := models.NewFlowLog(cfg.CountySlug)
	defer func() {
		flowPath := filepath.Join(cfg.OutDir, flowLogName)
		if err := flow.Write(flowPath); err != nil {
			slog.Warn("failed to write flow log", "path", flowPath, "error", err)
		}
	}()

	runner := scraper.NewRunner(cfg, flow)
	result, err := runner.Run(ctx)
	flow.Records = len(result.Records)
	if err != nil {
		flow.Error = err.Error()
		slog.Error("extraction failed", "run", result.RunID, "error", err)
		return err
	}

	jsonPath, csvPath, err := output.Write(result, cfg.OutDir, cfg.CountySlug, cfg.SkipCSV)
	if err != nil {
		flow.Error = err.Error()
		slog.Error("failed to write output", "error", err)
		return err
	}
	flow.FinishedOK = true
	flow.JSONPath = jsonPath
	flow.CSVPath = csvPath

	slog.Info("laredo finished",
		"run", result.RunID,
		"status", result.Status,
		"records", len(result.Records),
		"pages", result.PagesVisited,
		"rowsSeen", result.RowsSeen,
		"rowsSkipped", result.RowsSkipped,
		"flags", result.Flags,
	)
	return nil
}

// initLogger configures slog. Alongside stdout, log lines go to a rotating
// file so a failed CI run leaves a persistent trace.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var sink io.Writer = os.Stdout
	if cfg.Path != "" {
		sink = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(sink, opts)
	} else {
		handler = slog.NewTextHandler(sink, opts)
	}
	slog.SetDefault(slog.New(handler))
}
