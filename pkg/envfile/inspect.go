package envfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Issue describes a line that a load would skip or mis-parse.
type Issue struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
	Text   string `json:"text" yaml:"text"`
}

// Issue reasons.
const (
	IssueMissingSeparator = string(skipMissingSeparator)
	IssueEmptyKey         = string(skipEmptyKey)
	IssueLineTooLong      = "line_too_long"
)

// Report summarizes a file without loading it.
type Report struct {
	Fragments int      `json:"fragments" yaml:"fragments"`
	Entries   int      `json:"entries" yaml:"entries"`
	Keys      []string `json:"keys" yaml:"keys"`
	Issues    []Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Inspect parses r with the loader's settings and reports what a load would
// append and skip. The store is neither read nor modified.
func (l *Loader) Inspect(r io.Reader) (*Report, error) {
	reader := newFragmentReader(r, l.maxLineLength)
	report := &Report{}

	for {
		fragment, readErr := reader.next()
		lineNum := reader.line

		if fragment != "" {
			report.Fragments++
			if reader.truncated {
				report.Issues = append(report.Issues, Issue{
					Line:   lineNum,
					Reason: IssueLineTooLong,
					Text:   NormalizeNewline(fragment, l.newline),
				})
			}

			key, _, reason := parseFragment(fragment, l.newline)
			switch {
			case reason.malformed():
				report.Issues = append(report.Issues, Issue{
					Line:   lineNum,
					Reason: string(reason),
					Text:   NormalizeNewline(fragment, l.newline),
				})
			case reason == skipNone:
				report.Entries++
				report.Keys = append(report.Keys, key)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return report, nil
		}
		if readErr != nil {
			return report, fmt.Errorf("read: %w", readErr)
		}
	}
}

// InspectFile is Inspect for the file at path.
func (l *Loader) InspectFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer f.Close()

	return l.Inspect(f)
}
