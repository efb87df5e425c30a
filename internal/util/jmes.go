package util

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Query evaluates a JMESPath expression against data. data is first
// round-tripped through JSON so struct values are addressed by their json
// tags rather than Go field names.
func Query(expr string, data any) (any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal query input failed: %w", err)
	}
	var input any
	if err := json.Unmarshal(b, &input); err != nil {
		return nil, fmt.Errorf("decode query input failed: %w", err)
	}
	res, err := jmespath.Search(expr, input)
	if err != nil {
		return nil, fmt.Errorf("jmespath search failed: %w", err)
	}
	return res, nil
}
