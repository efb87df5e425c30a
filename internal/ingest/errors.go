package ingest

import "fmt"

// ParseError reports an input file that could not be opened, read or decoded.
// Ingestion never returns partial records alongside a ParseError.
type ParseError struct {
	Path string
	Op   string // "open", "read" or "parse"
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
