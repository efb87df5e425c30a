package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/valyala/fastjson"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// Ingestor reads log files into records. The zero value is not usable; use New.
type Ingestor struct {
	logger *slog.Logger
}

// New returns an Ingestor that reports skipped input on logger.
// A nil logger discards everything.
func New(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingestor{logger: logger}
}

var defaultIngestor = New(nil)

// ReadJSON reads path with a silent Ingestor.
func ReadJSON(path string) ([]model.LogRecord, error) { return defaultIngestor.ReadJSON(path) }

// ReadText reads path with a silent Ingestor.
func ReadText(path string) ([]model.LogRecord, error) { return defaultIngestor.ReadText(path) }

// ReadJSON parses the whole file as one JSON array of objects and returns a
// record per element in file order. String values are kept verbatim; any
// other value is kept as its compact JSON text.
func (in *Ingestor) ReadJSON(path string) ([]model.LogRecord, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Op: "open", Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ParseError{Path: path, Op: "read", Err: err}
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, &ParseError{Path: path, Op: "parse", Err: err}
	}
	if v.Type() != fastjson.TypeArray {
		return nil, &ParseError{Path: path, Op: "parse", Err: fmt.Errorf("top-level value is %s, want array", v.Type())}
	}
	arr, _ := v.Array()

	records := make([]model.LogRecord, 0, len(arr))
	for i, elem := range arr {
		rec, err := recordFromValue(elem)
		if err != nil {
			return nil, &ParseError{Path: path, Op: "parse", Err: fmt.Errorf("element %d: %w", i, err)}
		}
		records = append(records, rec)
	}
	in.logger.Debug("parsed json log file", "path", path, "records", len(records))
	return records, nil
}

var errNotObject = errors.New("not a JSON object")

func recordFromValue(v *fastjson.Value) (model.JSONRecord, error) {
	obj, err := v.Object()
	if err != nil {
		return model.JSONRecord{}, errNotObject
	}
	keys := make([]string, 0, obj.Len())
	values := make([]string, 0, obj.Len())
	obj.Visit(func(key []byte, val *fastjson.Value) {
		keys = append(keys, string(key))
		values = append(values, valueText(val))
	})
	return model.NewJSONRecord(keys, values), nil
}

func valueText(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}
