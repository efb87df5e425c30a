package filter

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

func rec(kv ...string) model.LogRecord {
	keys := make([]string, 0, len(kv)/2)
	values := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		keys = append(keys, kv[i])
		values = append(values, kv[i+1])
	}
	return model.NewJSONRecord(keys, values)
}

func severities(records []model.LogRecord) []string {
	var out []string
	for _, r := range records {
		v, _ := r.Lookup(model.FieldSeverity)
		out = append(out, v)
	}
	return out
}

var fixture = []model.LogRecord{
	rec("severity", "Error", "event_type", "login", "source_ip", "1.1.1.1"),
	rec("severity", "Warning", "event_type", "login", "source_ip", "2.2.2.2"),
	rec("severity", "Info", "event_type", "logout", "source_ip", "1.1.1.1"),
	rec("severity", "Error", "event_type", "scan", "source_ip", "3.3.3.3"),
	rec("event_type", "login"),
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		mode   Mode
		want   []string
	}{
		{"single key any value", Fields{"severity": {"Error", "Warning"}}, And, []string{"Error", "Warning", "Error"}},
		{"single key or", Fields{"severity": {"Error", "Warning"}}, Or, []string{"Error", "Warning", "Error"}},
		{"and across keys", Fields{"severity": {"Error"}, "event_type": {"login"}}, And, []string{"Error"}},
		{"or across keys", Fields{"severity": {"Info"}, "event_type": {"scan"}}, Or, []string{"Info", "Error"}},
		{"missing field never matches", Fields{"event_type": {"login"}, "severity": {"Error", "Warning", "Info"}}, And, []string{"Error", "Warning"}},
		{"missing field matches via other key in or", Fields{"event_type": {"login"}, "severity": {"Info"}}, Or, []string{"Error", "Warning", "Info", ""}},
		{"no match", Fields{"severity": {"Critical"}}, And, nil},
		{"case sensitive", Fields{"severity": {"error"}}, And, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := severities(Apply(fixture, tt.fields, tt.mode))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Apply()=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyEmptySpecReturnsInput(t *testing.T) {
	got := Apply(fixture, Fields{}, And)
	if len(got) != len(fixture) || &got[0] != &fixture[0] {
		t.Fatalf("empty spec must return the input slice itself")
	}
	if got := Apply(nil, nil, Or); got != nil {
		t.Fatalf("Apply(nil)=%v, want nil", got)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := append([]model.LogRecord(nil), fixture...)
	_ = Apply(in, Fields{"severity": {"Error"}}, And)
	if !reflect.DeepEqual(in, fixture) {
		t.Fatalf("input modified by Apply")
	}
}

func TestSpecApplyTextRecords(t *testing.T) {
	records := []model.LogRecord{
		model.TextRecord{IPAddress: "10.0.0.1", LogMessage: "denied"},
		model.TextRecord{IPAddress: "10.0.0.2", LogMessage: "ok"},
	}
	spec := Spec{Fields: Fields{model.FieldIPAddress: {"10.0.0.2"}}, Mode: And}
	got := spec.Apply(records)
	if len(got) != 1 || got[0].(model.TextRecord).LogMessage != "ok" {
		t.Fatalf("Spec.Apply()=%v", got)
	}
	// Text records have no severity; filtering on it is a non-match, not an error.
	if got := Apply(records, Fields{model.FieldSeverity: {"Error"}}, Or); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"AND", And, false},
		{"and", And, false},
		{" Or ", Or, false},
		{"xor", And, true},
		{"", And, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Fatalf("ParseMode(%q) err=%v, want ErrUnknownMode", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseMode(%q)=(%v,%v), want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

var (
	genValues = []string{"Error", "Warning", "Info", "login", "logout", "1.1.1.1", "2.2.2.2"}
	genKeys   = []string{"severity", "event_type", "source_ip"}
)

func drawRecords(t *rapid.T) []model.LogRecord {
	n := rapid.IntRange(0, 20).Draw(t, "n")
	out := make([]model.LogRecord, 0, n)
	for i := 0; i < n; i++ {
		var kv []string
		for _, k := range genKeys {
			if rapid.Bool().Draw(t, "has-"+k) {
				kv = append(kv, k, rapid.SampledFrom(genValues).Draw(t, "val-"+k))
			}
		}
		out = append(out, rec(kv...))
	}
	return out
}

func drawFields(t *rapid.T) Fields {
	fields := Fields{}
	n := rapid.IntRange(1, len(genKeys)).Draw(t, "keys")
	for i := 0; i < n; i++ {
		k := genKeys[i]
		fields[k] = rapid.SliceOfN(rapid.SampledFrom(genValues), 1, 3).Draw(t, "accepted-"+k)
	}
	return fields
}

func TestAndIsSubsetOfOr(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := drawRecords(t)
		fields := drawFields(t)
		and := Apply(records, fields, And)
		or := Apply(records, fields, Or)
		for _, r := range and {
			if !Match(r, fields, Or) {
				t.Fatalf("record %v kept by AND but rejected by OR", r)
			}
		}
		if len(and) > len(or) {
			t.Fatalf("AND kept %d records, OR only %d", len(and), len(or))
		}
	})
}

func TestApplyPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := drawRecords(t)
		fields := drawFields(t)
		mode := rapid.SampledFrom([]Mode{And, Or}).Draw(t, "mode")
		got := Apply(records, fields, mode)
		i := 0
		for _, r := range records {
			if i < len(got) && reflect.DeepEqual(got[i], r) {
				i++
			}
		}
		if i != len(got) {
			t.Fatalf("result is not an ordered subsequence of the input")
		}
	})
}
