package envfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "plain", token: "value", want: "value"},
		{name: "surrounding whitespace", token: " \t value \r\n", want: "value"},
		{name: "matched quotes", token: `"value"`, want: "value"},
		{name: "quotes inside whitespace", token: `  "value"  `, want: "value"},
		{name: "leading quote only", token: `"value`, want: "value"},
		{name: "trailing quote only", token: `value"`, want: "value"},
		{name: "single quote character", token: `"`, want: ""},
		{name: "empty quotes", token: `""`, want: ""},
		{name: "whitespace inside quotes is kept", token: `" value "`, want: " value "},
		{name: "only one quote stripped per side", token: `""value""`, want: `"value"`},
		{name: "single quotes untouched", token: `'value'`, want: `'value'`},
		{name: "empty", token: "", want: ""},
		{name: "whitespace only", token: " \t\r\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trim(tt.token))
		})
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "no comment", line: "KEY=value", want: "KEY=value"},
		{name: "trailing comment", line: "KEY=a#b", want: "KEY=a"},
		{name: "comment with space", line: "KEY=value # note", want: "KEY=value "},
		{name: "hash inside quotes", line: `KEY="a#b"`, want: `KEY="a#b"`},
		{name: "comment after closing quote", line: `KEY="a"#b`, want: `KEY="a"`},
		{name: "odd quote count disables stripping", line: `KEY="a#b`, want: `KEY="a#b`},
		{name: "second hash after quoted hash", line: `KEY="a#b" # c`, want: `KEY="a#b" `},
		{name: "leading hash", line: "#KEY=value", want: ""},
		{name: "escaped quote is still a toggle", line: `KEY="a\"#b"`, want: `KEY="a\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComment(tt.line))
		})
	}
}

func TestNormalizeNewline(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		newline string
		want    string
	}{
		{name: "crlf with crlf preference", line: "A=1\r\n", newline: "\r\n", want: "A=1"},
		{name: "lf with crlf preference", line: "A=1\n", newline: "\r\n", want: "A=1"},
		{name: "crlf with lf preference keeps cr", line: "A=1\r\n", newline: "\n", want: "A=1\r"},
		{name: "no terminator", line: "A=1", newline: "\n", want: "A=1"},
		{name: "cuts at first newline", line: "A=1\nB=2\n", newline: "\n", want: "A=1"},
		{name: "empty preference falls back to lf", line: "A=1\n", newline: "", want: "A=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNewline(tt.line, tt.newline))
		})
	}
}

func TestPlatformNewline(t *testing.T) {
	assert.Equal(t, "\r\n", platformNewline("windows"))
	assert.Equal(t, "\n", platformNewline("linux"))
	assert.Equal(t, "\n", platformNewline("darwin"))
}

func TestSplitLine(t *testing.T) {
	key, value, ok := SplitLine("URL=http://host/?a=b")
	assert.True(t, ok)
	assert.Equal(t, "URL", key)
	assert.Equal(t, "http://host/?a=b", value)

	_, _, ok = SplitLine("no equals sign")
	assert.False(t, ok)

	key, value, ok = SplitLine("=value")
	assert.True(t, ok)
	assert.Empty(t, key)
	assert.Equal(t, "value", value)
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		name      string
		fragment  string
		wantKey   string
		wantValue string
		reason    skipReason
	}{
		{name: "entry", fragment: "KEY=value\n", wantKey: "KEY", wantValue: "value"},
		{name: "padded entry", fragment: "  KEY  =  value  \n", wantKey: "KEY", wantValue: "value"},
		{name: "quoted key", fragment: `"KEY"=value`, wantKey: "KEY", wantValue: "value"},
		{name: "empty value", fragment: "KEY=\n", wantKey: "KEY", wantValue: ""},
		{name: "unresolved placeholder kept", fragment: "URL=${HOST}\n", wantKey: "URL", wantValue: "${HOST}"},
		{name: "blank", fragment: "\n", reason: skipBlank},
		{name: "comment", fragment: "# KEY=value\n", reason: skipComment},
		{name: "indented comment is a missing separator", fragment: "  # note\n", reason: skipMissingSeparator},
		{name: "missing separator", fragment: "no equals sign\n", reason: skipMissingSeparator},
		{name: "separator only inside comment", fragment: "KEY # =value\n", reason: skipMissingSeparator},
		{name: "empty key", fragment: "=value\n", reason: skipEmptyKey},
		{name: "whitespace key", fragment: "   =value\n", reason: skipEmptyKey},
		{name: "whitespace only line", fragment: "   \n", reason: skipMissingSeparator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, reason := parseFragment(tt.fragment, "\n")
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
