package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Nao-Mk2/security-log-analyzer/internal/client"
	"github.com/Nao-Mk2/security-log-analyzer/internal/ingest"
	"github.com/Nao-Mk2/security-log-analyzer/internal/inspector"
	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
	"github.com/Nao-Mk2/security-log-analyzer/internal/report"
	"github.com/Nao-Mk2/security-log-analyzer/internal/visualize"

	"github.com/Nao-Mk2/security-log-analyzer/cmd"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: security-log-analyzer --input <file> [--format json|text] [--filter field=v1,v2]... [--mode AND|OR] [--group-by field] [--output chart.png] [--json [--pretty] [--query expr]]")
	fmt.Fprintln(os.Stderr, "       security-log-analyzer --format cloudwatch --groups g1,g2 [--filter-pattern p] [--region r] [--start RFC3339] [--end RFC3339] ...")
	fmt.Fprintln(os.Stderr, "Environment: SLA_INPUT and SLA_FORMAT provide defaults; LOG_GROUP_NAMES and AWS credentials for cloudwatch.")
	os.Exit(2)
}

func main() {
	opts := cmd.CollectOptions()
	if msg, code := opts.Validate(); code != 0 {
		if msg == "" {
			usage()
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(code)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	spec, err := opts.FilterSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid filter: %v\n", err)
		os.Exit(2)
	}

	records, err := load(context.Background(), opts, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest error: %v\n", err)
		os.Exit(1)
	}
	report.LogRecords(logger, "parsed log entries", records)

	filtered := spec.Apply(records)
	report.LogRecords(logger, "filtered log entries", filtered)

	summary, err := report.Build(records, filtered, opts.GroupBy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aggregate error: %v\n", err)
		os.Exit(1)
	}

	if opts.JSON {
		if err := report.Write(os.Stdout, summary, opts.Query, opts.PrettyJSON); err != nil {
			fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
			os.Exit(1)
		}
	} else {
		report.LogSummary(logger, summary)
	}

	if opts.Output == "" {
		return
	}
	if err := visualize.Render(opts.Output, records, logger); err != nil {
		fmt.Fprintf(os.Stderr, "visualization error: %v\n", err)
		os.Exit(1)
	}
}

// load reads records from the source selected by --format.
func load(ctx context.Context, opts *cmd.Options, logger *slog.Logger) ([]model.LogRecord, error) {
	switch opts.Format {
	case cmd.FormatText:
		return ingest.New(logger).ReadText(opts.Input)
	case cmd.FormatCloudWatch:
		return loadCloudWatch(ctx, opts, logger)
	default:
		return ingest.New(logger).ReadJSON(opts.Input)
	}
}

func loadCloudWatch(ctx context.Context, opts *cmd.Options, logger *slog.Logger) ([]model.LogRecord, error) {
	start, end, err := cmd.ResolveTimeWindow(opts.StartRFC3339, opts.EndRFC3339, time.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid time window: %w", err)
	}
	cw, err := client.NewCloudWatchClient(ctx, client.AuthOptions{Region: opts.Region, Profile: opts.Profile})
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudWatch client: %w", err)
	}
	insp := inspector.New(cw, cmd.ParseGroupsCSV(opts.GroupsCSV), start, end)
	insp.SetLogger(logger)
	records, err := insp.Collect(ctx, opts.FilterPattern)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		logger.Warn("no decodable log events found",
			"start", start.UTC().Format(time.RFC3339),
			"end", end.UTC().Format(time.RFC3339))
	}
	return records, nil
}
