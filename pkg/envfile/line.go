package envfile

import (
	"runtime"
	"strings"
)

// PlatformNewline is the newline sequence files written on this platform use.
var PlatformNewline = platformNewline(runtime.GOOS)

func platformNewline(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}

const trimCutset = " \t\r\n"

// NormalizeNewline cuts line at the first occurrence of newline, or failing
// that at the first bare '\n'. A line with neither is returned as read.
func NormalizeNewline(line, newline string) string {
	if newline != "" {
		if i := strings.Index(line, newline); i >= 0 {
			return line[:i]
		}
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		return line[:i]
	}
	return line
}

// quoteState is the state of the comment scanner.
type quoteState int

const (
	outsideQuotes quoteState = iota
	insideQuotes
)

// StripComment truncates line at the first '#' that is not inside double
// quotes. Every '"' toggles the quote state; there is no escape handling, so
// an odd number of quotes disables comment stripping for the rest of the line.
func StripComment(line string) string {
	state := outsideQuotes
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if state == outsideQuotes {
				state = insideQuotes
			} else {
				state = outsideQuotes
			}
		case '#':
			if state == outsideQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// SplitLine splits line on the first '='. ok is false when there is none.
func SplitLine(line string) (key, value string, ok bool) {
	return strings.Cut(line, "=")
}

// Trim removes surrounding spaces, tabs, CRs and LFs from token, then strips
// one leading '"' and, independently, one trailing '"'.
func Trim(token string) string {
	token = strings.Trim(token, trimCutset)
	token = strings.TrimPrefix(token, `"`)
	return strings.TrimSuffix(token, `"`)
}

// skipReason explains why a fragment produced no entry.
type skipReason string

const (
	skipNone             skipReason = ""
	skipBlank            skipReason = "blank"
	skipComment          skipReason = "comment"
	skipMissingSeparator skipReason = "missing_separator"
	skipEmptyKey         skipReason = "empty_key"
)

// malformed reports whether the reason describes a bad line rather than an
// intentionally ignored one.
func (r skipReason) malformed() bool {
	return r == skipMissingSeparator || r == skipEmptyKey
}

// parseFragment runs the preprocessing pipeline over one fragment and returns
// the trimmed key and raw (unresolved) value.
func parseFragment(fragment, newline string) (key, value string, reason skipReason) {
	line := NormalizeNewline(fragment, newline)
	if line == "" {
		return "", "", skipBlank
	}
	if line[0] == '#' {
		return "", "", skipComment
	}

	line = StripComment(line)

	rawKey, rawValue, ok := SplitLine(line)
	if !ok {
		return "", "", skipMissingSeparator
	}

	key = Trim(rawKey)
	if key == "" {
		return "", "", skipEmptyKey
	}
	return key, Trim(rawValue), skipNone
}
