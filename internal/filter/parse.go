package filter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFieldFlag parses "name=v1,v2" into a field name and its values.
// Values are trimmed; empty entries are dropped.
func ParseFieldFlag(s string) (string, []string, error) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return "", nil, fmt.Errorf("invalid --filter %q; expected field=value[,value...]", s)
	}
	name := strings.TrimSpace(s[:i])
	if name == "" {
		return "", nil, fmt.Errorf("invalid --filter %q; empty field name", s)
	}
	var values []string
	for _, v := range strings.Split(s[i+1:], ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyValues, name)
	}
	return name, values, nil
}

// ParseFieldFlags merges repeated --filter flags. Values for a repeated
// field name are appended in flag order.
func ParseFieldFlags(flags []string) (Fields, error) {
	fields := Fields{}
	for _, f := range flags {
		name, values, err := ParseFieldFlag(f)
		if err != nil {
			return nil, err
		}
		fields[name] = append(fields[name], values...)
	}
	return fields, nil
}

type specFile struct {
	Mode   string              `yaml:"mode"`
	Fields map[string][]string `yaml:"fields"`
}

// LoadSpec reads a YAML filter file:
//
//	mode: OR
//	fields:
//	  severity: [Error, Warning]
//
// A missing mode defaults to AND.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read filter file: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec decodes the YAML form accepted by LoadSpec.
func ParseSpec(data []byte) (Spec, error) {
	var sf specFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return Spec{}, fmt.Errorf("decode filter file: %w", err)
	}
	spec := Spec{Fields: Fields(sf.Fields), Mode: And}
	if spec.Fields == nil {
		spec.Fields = Fields{}
	}
	if sf.Mode != "" {
		m, err := ParseMode(sf.Mode)
		if err != nil {
			return Spec{}, err
		}
		spec.Mode = m
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Merge returns a spec whose fields are the union of s and other.
// Values from other are appended after those of s; s.Mode is kept.
func (s Spec) Merge(other Fields) Spec {
	merged := Fields{}
	for k, v := range s.Fields {
		merged[k] = append([]string(nil), v...)
	}
	for k, v := range other {
		merged[k] = append(merged[k], v...)
	}
	return Spec{Fields: merged, Mode: s.Mode}
}
