package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Nao-Mk2/security-log-analyzer/internal/filter"
	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// Input formats.
const (
	FormatJSON       = "json"
	FormatText       = "text"
	FormatCloudWatch = "cloudwatch"
)

// DefaultOutput is the chart artifact written when --output is not given.
const DefaultOutput = "log_visualization.png"

// Options holds CLI options after parsing flags and env defaults.
type Options struct {
	Input      string
	Format     string
	Filters    []string
	FilterFile string
	Mode       string
	GroupBy    string
	Output     string
	JSON       bool
	PrettyJSON bool
	Query      string
	Verbose    bool

	// CloudWatch source
	GroupsCSV     string
	Region        string
	Profile       string
	FilterPattern string
	StartRFC3339  string
	EndRFC3339    string

	// explicit holds the names of flags given on the command line.
	explicit map[string]bool
}

// DefaultGroupBy returns the aggregation field used when --group-by is not
// given. Text records carry no severity, so they are grouped by address.
func DefaultGroupBy(format string) string {
	if format == FormatText {
		return model.FieldIPAddress
	}
	return model.FieldSeverity
}

// IsSet reports whether the named flag was given explicitly.
func (o *Options) IsSet(name string) bool { return o.explicit[name] }

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ";") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Validate checks relationships and required flags.
// Returns an error message and exit code; if the input is missing for a
// file format, it returns ("", 2) and the caller should invoke usage().
func (o *Options) Validate() (string, int) {
	switch o.Format {
	case FormatJSON, FormatText:
		if o.Input == "" {
			return "", 2
		}
	case FormatCloudWatch:
		if len(ParseGroupsCSV(o.GroupsCSV)) == 0 {
			return "error: --format cloudwatch requires --groups or LOG_GROUP_NAMES", 2
		}
	default:
		return fmt.Sprintf("error: unknown --format %q (want json, text or cloudwatch)", o.Format), 2
	}
	if _, err := o.filterMode(); err != nil {
		return fmt.Sprintf("error: --mode %q must be AND or OR", o.Mode), 2
	}
	if o.FilterFile != "" && o.IsSet("mode") {
		return "error: --mode conflicts with the mode of --filter-file", 2
	}
	if strings.TrimSpace(o.GroupBy) == "" {
		return "error: --group-by must not be empty", 2
	}
	if o.Query != "" && !o.JSON {
		return "error: --query requires --json", 2
	}
	if o.PrettyJSON && !o.JSON {
		return "error: --pretty requires --json", 2
	}
	return "", 0
}

// FilterSpec builds the filter from --filter-file (if any) and --filter flags.
// Flags add values to the file's fields; mode comes from the file when given.
func (o *Options) FilterSpec() (filter.Spec, error) {
	fields, err := filter.ParseFieldFlags(o.Filters)
	if err != nil {
		return filter.Spec{}, err
	}
	if o.FilterFile != "" {
		base, err := filter.LoadSpec(o.FilterFile)
		if err != nil {
			return filter.Spec{}, err
		}
		return base.Merge(fields), nil
	}
	mode, err := o.filterMode()
	if err != nil {
		return filter.Spec{}, err
	}
	return filter.Spec{Fields: fields, Mode: mode}, nil
}

// filterMode parses --mode; empty means AND.
func (o *Options) filterMode() (filter.Mode, error) {
	if o.Mode == "" {
		return filter.And, nil
	}
	return filter.ParseMode(o.Mode)
}

// CollectOptions parses flags with environment-backed defaults and returns Options.
func CollectOptions() *Options {
	var o Options
	var filters stringList

	format := os.Getenv("SLA_FORMAT")
	if format == "" {
		format = FormatJSON
	}

	flag.StringVar(&o.Input, "input", os.Getenv("SLA_INPUT"), "Log file to analyze (.gz and .zst are decompressed)")
	flag.StringVar(&o.Format, "format", format, "Input format: json, text or cloudwatch")
	flag.Var(&filters, "filter", "Field constraint field=v1,v2 (repeatable)")
	flag.StringVar(&o.FilterFile, "filter-file", "", "YAML filter file (mode and fields)")
	flag.StringVar(&o.Mode, "mode", "AND", "How field constraints combine: AND or OR")
	flag.StringVar(&o.GroupBy, "group-by", "", "Field to aggregate filtered records by (default severity; ip_address for text)")
	flag.StringVar(&o.Output, "output", DefaultOutput, "Chart image path (empty disables charts)")
	flag.BoolVar(&o.JSON, "json", false, "Write the summary as JSON to stdout")
	flag.BoolVar(&o.PrettyJSON, "pretty", false, "Indent JSON output; requires --json")
	flag.StringVar(&o.Query, "query", "", "JMESPath projection of the JSON summary; requires --json")
	flag.BoolVar(&o.Verbose, "verbose", false, "Log parsed and filtered records")

	flag.StringVar(&o.GroupsCSV, "groups", os.Getenv("LOG_GROUP_NAMES"), "Comma-separated CloudWatch log group names")
	flag.StringVar(&o.Region, "region", os.Getenv("AWS_REGION"), "AWS region (optional; falls back to AWS defaults)")
	flag.StringVar(&o.Profile, "profile", "", "AWS shared config profile (or set AWS_PROFILE)")
	flag.StringVar(&o.FilterPattern, "filter-pattern", "", "CloudWatch Logs filter pattern (empty pulls every event)")
	flag.StringVar(&o.StartRFC3339, "start", "", "Start time RFC3339 (e.g., 2025-08-30T15:04:05Z)")
	flag.StringVar(&o.EndRFC3339, "end", "", "End time RFC3339 (e.g., 2025-08-31T15:04:05Z)")
	flag.Parse()

	o.explicit = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { o.explicit[f.Name] = true })

	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	o.Filters = filters
	if !o.IsSet("group-by") {
		o.GroupBy = DefaultGroupBy(o.Format)
	}
	return &o
}

// ParseGroupsCSV turns a comma-separated groups string into slice, trimming empties.
func ParseGroupsCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var groups []string
	for _, g := range strings.Split(csv, ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// ResolveTimeWindow computes the [start,end] from optional RFC3339 strings.
// Rules:
// - both empty: last 24h ending at now
// - only start: end = start + 24h, capped at now
// - only end: start = end - 24h
// - both set: validate start <= end
func ResolveTimeWindow(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr == "" && endStr == "" {
		return now.Add(-24 * time.Hour), now, nil
	}
	var start, end time.Time
	var err error
	if startStr != "" {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if startStr != "" && endStr == "" {
		end = start.Add(24 * time.Hour)
		if end.After(now) {
			end = now
		}
	} else if startStr == "" && endStr != "" {
		start = end.Add(-24 * time.Hour)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrStartAfterEnd
	}
	return start, end, nil
}

// ErrStartAfterEnd represents an invalid time window where start > end.
var ErrStartAfterEnd = &timeRangeError{"start is after end"}

type timeRangeError struct{ s string }

func (e *timeRangeError) Error() string { return e.s }
