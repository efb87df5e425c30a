package ingest

import (
	"strings"

	"github.com/valyala/fastjson"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// DecodeEntry turns a single log message into a record. A JSON object becomes
// a JSONRecord, a line in the text shape becomes a TextRecord, and anything
// else is rejected with ok=false.
func DecodeEntry(msg string) (model.LogRecord, bool) {
	if strings.HasPrefix(strings.TrimSpace(msg), "{") {
		var p fastjson.Parser
		if v, err := p.Parse(msg); err == nil {
			if rec, err := recordFromValue(v); err == nil {
				return rec, true
			}
		}
	}
	line := strings.TrimRight(msg, "\r\n")
	if rec, ok := ParseLine(line); ok {
		return rec, true
	}
	return nil, false
}
