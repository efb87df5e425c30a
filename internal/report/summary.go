package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Nao-Mk2/security-log-analyzer/internal/aggregate"
	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
	"github.com/Nao-Mk2/security-log-analyzer/internal/util"
)

// Summary is the outcome of one analysis run over the filtered records.
type Summary struct {
	Parsed    int                `json:"parsed"`
	Total     int                `json:"total"`
	ErrorRate string             `json:"error_rate"`
	GroupBy   string             `json:"group_by"`
	Breakdown []aggregate.Bucket `json:"breakdown"`
}

// Build aggregates filtered by groupBy. A record lacking groupBy fails the
// build with the aggregator's *aggregate.LookupError.
func Build(parsed, filtered []model.LogRecord, groupBy string) (Summary, error) {
	counts, err := aggregate.Aggregate(filtered, groupBy)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate by %s: %w", groupBy, err)
	}
	return Summary{
		Parsed:    aggregate.Count(parsed),
		Total:     aggregate.Count(filtered),
		ErrorRate: aggregate.ErrorRate(filtered),
		GroupBy:   groupBy,
		Breakdown: counts.Buckets(),
	}, nil
}

// Write encodes s as JSON. With a non-empty query, only the JMESPath
// projection of the summary is written.
func Write(w io.Writer, s Summary, query string, pretty bool) error {
	var out any = s
	if query != "" {
		res, err := util.Query(query, s)
		if err != nil {
			return err
		}
		out = res
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
