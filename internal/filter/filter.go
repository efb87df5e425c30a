package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// Mode combines the per-field predicates of a Spec.
type Mode int

const (
	// And keeps a record only when every field matches one of its values.
	And Mode = iota
	// Or keeps a record when at least one field matches one of its values.
	Or
)

func (m Mode) String() string {
	switch m {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	// ErrUnknownMode is returned for a mode other than AND or OR.
	ErrUnknownMode = errors.New("unknown filter mode")
	// ErrEmptyValues is returned for a field constrained by no values.
	ErrEmptyValues = errors.New("filter field has no accepted values")
)

// ParseMode accepts "AND" or "OR" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND":
		return And, nil
	case "OR":
		return Or, nil
	default:
		return And, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Fields maps a field name to its accepted values.
type Fields map[string][]string

// Keys returns the constrained field names sorted for stable output.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Spec is a complete filter: field constraints plus the mode joining them.
type Spec struct {
	Fields Fields
	Mode   Mode
}

// Validate rejects empty field names, empty value lists and unknown modes.
func (s Spec) Validate() error {
	if s.Mode != And && s.Mode != Or {
		return fmt.Errorf("%w: %v", ErrUnknownMode, s.Mode)
	}
	for _, k := range s.Fields.Keys() {
		if strings.TrimSpace(k) == "" {
			return errors.New("filter field name is empty")
		}
		if len(s.Fields[k]) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyValues, k)
		}
	}
	return nil
}

// Apply filters records with the spec's fields and mode.
func (s Spec) Apply(records []model.LogRecord) []model.LogRecord {
	return Apply(records, s.Fields, s.Mode)
}

// Apply returns the records accepted by fields under mode, in input order.
// Within one field a record matches if its value equals any accepted value;
// a record lacking the field never matches it. An empty fields map returns
// records itself. The input slice and its records are never modified.
func Apply(records []model.LogRecord, fields Fields, mode Mode) []model.LogRecord {
	if len(fields) == 0 {
		return records
	}
	out := make([]model.LogRecord, 0, len(records))
	for _, r := range records {
		if Match(r, fields, mode) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single record is accepted.
func Match(r model.LogRecord, fields Fields, mode Mode) bool {
	if len(fields) == 0 {
		return true
	}
	for key, accepted := range fields {
		ok := matchField(r, key, accepted)
		if mode == Or && ok {
			return true
		}
		if mode != Or && !ok {
			return false
		}
	}
	return mode != Or
}

func matchField(r model.LogRecord, key string, accepted []string) bool {
	v, ok := r.Lookup(key)
	if !ok {
		return false
	}
	for _, a := range accepted {
		if v == a {
			return true
		}
	}
	return false
}
