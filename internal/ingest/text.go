package ingest

import (
	"bufio"
	"regexp"

	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// linePattern anchors the address and timestamp from the left; the message
// takes the rest of the line, including further " - " separators.
var linePattern = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}) - (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - (.*)$`)

const maxLineSize = 1 << 20

// ParseLine extracts a text record from one line. ok is false when the line
// does not match the "<ipv4> - <YYYY-MM-DD HH:MM:SS> - <message>" shape.
func ParseLine(line string) (model.TextRecord, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.TextRecord{}, false
	}
	return model.TextRecord{
		IPAddress:  m[1],
		Datetime:   m[2],
		LogMessage: m[3],
		RawEntry:   line,
	}, true
}

// ReadText reads path line by line and returns a record for every matching
// line in file order. Non-matching lines are skipped, not reported as errors.
func (in *Ingestor) ReadText(path string) ([]model.LogRecord, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Op: "open", Err: err}
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []model.LogRecord
	lineNo, skipped := 0, 0
	for sc.Scan() {
		lineNo++
		rec, ok := ParseLine(sc.Text())
		if !ok {
			skipped++
			in.logger.Debug("skipping unmatched line", "path", path, "line", lineNo)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: path, Op: "read", Err: err}
	}
	in.logger.Debug("parsed text log file", "path", path, "records", len(records), "skipped", skipped)
	return records, nil
}
