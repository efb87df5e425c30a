package report

import (
	"context"
	"log/slog"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

var jsonFields = []string{
	model.FieldTimestamp,
	model.FieldSourceIP,
	model.FieldDestinationIP,
	model.FieldEventType,
	model.FieldSeverity,
	model.FieldLogMessage,
}

var textFields = []string{
	model.FieldIPAddress,
	model.FieldDatetime,
	model.FieldLogMessage,
}

// LogRecords writes one debug line per record under title. Absent fields
// are omitted instead of printed as empty.
func LogRecords(logger *slog.Logger, title string, records []model.LogRecord) {
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	logger.Debug(title, "count", len(records))
	for i, r := range records {
		fields := jsonFields
		if _, ok := r.(model.TextRecord); ok {
			fields = textFields
		}
		attrs := []any{"index", i}
		for _, f := range fields {
			if v, ok := r.Lookup(f); ok {
				attrs = append(attrs, f, v)
			}
		}
		logger.Debug("record", attrs...)
	}
}

// LogSummary writes the breakdown, total and error rate at info level.
func LogSummary(logger *slog.Logger, s Summary) {
	for _, b := range s.Breakdown {
		logger.Info("breakdown", s.GroupBy, b.Value, "count", b.Count)
	}
	logger.Info("summary", "parsed", s.Parsed, "total", s.Total, "error_rate", s.ErrorRate)
}
