package aggregate

import (
	"fmt"
	"sort"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// SeverityError is the severity value counted by ErrorRate.
const SeverityError = "Error"

// LookupError reports a record lacking the field being aggregated.
type LookupError struct {
	Field string
	Index int // position of the offending record in the input
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("record %d has no field %q", e.Index, e.Field)
}

// Counts holds occurrences per distinct value in first-seen order.
type Counts struct {
	keys   []string
	counts map[string]int
}

// Bucket is one value and its occurrence count.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func newCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

func (c *Counts) add(v string) {
	if _, ok := c.counts[v]; !ok {
		c.keys = append(c.keys, v)
	}
	c.counts[v]++
}

// Keys returns the distinct values in first-seen order.
func (c *Counts) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the count for v, zero if unseen.
func (c *Counts) Get(v string) int { return c.counts[v] }

// Len returns the number of distinct values.
func (c *Counts) Len() int { return len(c.keys) }

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Buckets returns value/count pairs in first-seen order.
func (c *Counts) Buckets() []Bucket {
	out := make([]Bucket, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Bucket{Value: k, Count: c.counts[k]})
	}
	return out
}

// Sorted returns buckets by descending count; ties keep first-seen order.
func (c *Counts) Sorted() []Bucket {
	out := c.Buckets()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Aggregate counts records per value of field. Every record must carry the
// field; the first one that does not fails the whole call with *LookupError.
func Aggregate(records []model.LogRecord, field string) (*Counts, error) {
	c := newCounts()
	for i, r := range records {
		v, ok := r.Lookup(field)
		if !ok {
			return nil, &LookupError{Field: field, Index: i}
		}
		c.add(v)
	}
	return c, nil
}

// Count returns the number of records.
func Count(records []model.LogRecord) int {
	return len(records)
}

// ErrorRate returns the share of records whose severity is exactly "Error",
// formatted like "12.50%". Records without a severity count as non-errors,
// and an empty input yields "0.00%".
func ErrorRate(records []model.LogRecord) string {
	total := len(records)
	if total == 0 {
		return "0.00%"
	}
	errs := 0
	for _, r := range records {
		if v, ok := r.Lookup(model.FieldSeverity); ok && v == SeverityError {
			errs++
		}
	}
	return fmt.Sprintf("%.2f%%", float64(errs)/float64(total)*100)
}
