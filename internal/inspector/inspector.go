package inspector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Nao-Mk2/security-log-analyzer/internal/client"
	"github.com/Nao-Mk2/security-log-analyzer/internal/ingest"
	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// Searcher fetches the events of one log group.
type Searcher interface {
	SearchGroup(ctx context.Context, group, filterPattern string, startMs, endMs int64) ([]client.Event, error)
}

// Inspector pulls events from several CloudWatch log groups once and turns
// them into log records.
type Inspector struct {
	searcher  Searcher
	groups    []string
	startTime time.Time
	endTime   time.Time
	logger    *slog.Logger
}

// New creates an Inspector over groups for the [startTime, endTime] window.
func New(searcher Searcher, groups []string, startTime, endTime time.Time) *Inspector {
	return &Inspector{
		searcher:  searcher,
		groups:    groups,
		startTime: startTime,
		endTime:   endTime,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets where skipped events are reported.
func (in *Inspector) SetLogger(l *slog.Logger) {
	if l != nil {
		in.logger = l
	}
}

// Events returns the raw events of all groups ordered by timestamp. Events
// with equal timestamps keep group order, then page order.
func (in *Inspector) Events(ctx context.Context, filterPattern string) ([]client.Event, error) {
	if len(in.groups) == 0 {
		return nil, errors.New("no log groups configured")
	}
	fp := quotePattern(filterPattern)
	startMs := in.startTime.UnixMilli()
	endMs := in.endTime.UnixMilli()

	var all []client.Event
	for _, g := range in.groups {
		events, err := in.searcher.SearchGroup(ctx, g, fp, startMs, endMs)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", g, err)
		}
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, nil
}

// Collect searches every group and decodes each event message into a record.
// Messages that are neither JSON objects nor pattern lines are skipped.
func (in *Inspector) Collect(ctx context.Context, filterPattern string) ([]model.LogRecord, error) {
	events, err := in.Events(ctx, filterPattern)
	if err != nil {
		return nil, err
	}
	records := make([]model.LogRecord, 0, len(events))
	for _, e := range events {
		rec, ok := ingest.DecodeEntry(e.Message)
		if !ok {
			in.logger.Debug("skipping undecodable event", "group", e.LogGroup, "stream", e.LogStream)
			continue
		}
		records = append(records, rec)
	}
	in.logger.Debug("collected cloudwatch records", "groups", len(in.groups), "events", len(events), "records", len(records))
	return records, nil
}

// quotePattern quotes a CloudWatch filter term so special characters are
// matched literally. Empty means "all events" and stays empty.
func quotePattern(fp string) string {
	if fp == "" {
		return ""
	}
	if len(fp) >= 2 && fp[0] == '"' && fp[len(fp)-1] == '"' {
		return fp
	}
	return "\"" + fp + "\""
}
