package model

// Canonical field names of JSON-sourced records.
const (
	FieldTimestamp     = "timestamp"
	FieldSourceIP      = "source_ip"
	FieldDestinationIP = "destination_ip"
	FieldEventType     = "event_type"
	FieldSeverity      = "severity"
	FieldLogMessage    = "log_message"
)

// Field names of text-sourced records. log_message is shared with JSON records.
const (
	FieldIPAddress = "ip_address"
	FieldDatetime  = "datetime"
	FieldRawEntry  = "raw_entry"
)

// LogRecord is one normalized event. Lookup reports ok=false when the record
// has no such field, which is distinct from a present field holding "".
type LogRecord interface {
	Lookup(field string) (value string, ok bool)
}

// JSONRecord is a record decoded from a structured JSON object.
// It keeps every key of the object, not only the canonical ones.
type JSONRecord struct {
	keys   []string
	fields map[string]string
}

// NewJSONRecord builds a record from key/value pairs given in input order.
// Later duplicates of a key overwrite the value but keep the first position.
func NewJSONRecord(keys []string, values []string) JSONRecord {
	r := JSONRecord{
		keys:   make([]string, 0, len(keys)),
		fields: make(map[string]string, len(keys)),
	}
	for i, k := range keys {
		if _, seen := r.fields[k]; !seen {
			r.keys = append(r.keys, k)
		}
		if i < len(values) {
			r.fields[k] = values[i]
		} else {
			r.fields[k] = ""
		}
	}
	return r
}

// JSONRecordFromMap builds a record from a map. Key order follows the order
// slice when given; remaining keys are not retained in any particular order.
func JSONRecordFromMap(m map[string]string, order ...string) JSONRecord {
	keys := make([]string, 0, len(m))
	values := make([]string, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, k := range order {
		if v, ok := m[k]; ok && !used[k] {
			keys = append(keys, k)
			values = append(values, v)
			used[k] = true
		}
	}
	for k, v := range m {
		if !used[k] {
			keys = append(keys, k)
			values = append(values, v)
		}
	}
	return NewJSONRecord(keys, values)
}

// Lookup implements LogRecord.
func (r JSONRecord) Lookup(field string) (string, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// Keys returns the record's keys in input order.
func (r JSONRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// TextRecord is a record extracted from a semi-structured text line.
type TextRecord struct {
	IPAddress  string
	Datetime   string
	LogMessage string
	RawEntry   string
}

// Lookup implements LogRecord.
func (r TextRecord) Lookup(field string) (string, bool) {
	switch field {
	case FieldIPAddress:
		return r.IPAddress, true
	case FieldDatetime:
		return r.Datetime, true
	case FieldLogMessage:
		return r.LogMessage, true
	case FieldRawEntry:
		return r.RawEntry, true
	default:
		return "", false
	}
}
