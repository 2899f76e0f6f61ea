package envfile

import "strings"

// MaxNameLength is the longest placeholder name looked up. Longer names are
// truncated before the lookup.
const MaxNameLength = 255

const (
	placeholderOpen  = "${"
	placeholderClose = '}'
)

// Lookuper is anything that can look up a value by key. *Store satisfies it.
type Lookuper interface {
	Get(key string) (string, bool)
}

// Resolve replaces every ${NAME} in value with the value lookup returns for
// NAME, or with nothing when NAME is undefined. It makes a single pass:
// substituted text is never scanned again. An opening marker without a
// closing '}' ends resolution and the rest of value is dropped.
func Resolve(value string, lookup Lookuper) string {
	var b strings.Builder
	b.Grow(len(value))

	rest := value
	for {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])

		end := strings.IndexByte(rest[start:], placeholderClose)
		if end < 0 {
			break
		}
		end += start

		name := rest[start+len(placeholderOpen) : end]
		if len(name) > MaxNameLength {
			name = name[:MaxNameLength]
		}
		if v, ok := lookup.Get(name); ok {
			b.WriteString(v)
		}
		rest = rest[end+1:]
	}

	return b.String()
}

// Resolve expands ${NAME} placeholders in value against the store's current
// entries.
func (s *Store) Resolve(value string) string {
	return Resolve(value, s)
}
