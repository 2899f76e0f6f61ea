// Package envfile loads KEY=VALUE configuration files into an in-process store.
//
// # Overview
//
// A Loader reads a file line by line, strips comments, splits each line on the
// first '=', trims the key and value, resolves ${NAME} placeholders against the
// entries already loaded and appends the result to a Store. Applications then
// look values up with Store.Get instead of reading OS environment variables.
//
// # File Format
//
//	# full-line comment
//	HOST=localhost
//	PORT = 8080             # trailing comment
//	GREETING="hello # not a comment"
//	URL=http://${HOST}:${PORT}
//
// Rules:
//
//   - Blank lines and lines whose first character is '#' are ignored.
//   - '#' starts a comment unless an odd number of '"' precede it on the line.
//   - Whitespace around keys and values is removed, then one leading and one
//     trailing '"' (each side independently, matched or not).
//   - Lines without '=' or with an empty key are skipped.
//   - ${NAME} is replaced by the value of NAME at the time the line is read.
//     Undefined names and forward references become the empty string, and
//     substituted values are never expanded again.
//   - An unterminated ${ drops the remainder of the value.
//   - Lines longer than MaxLineLength-1 bytes are split into fragments and
//     each fragment is parsed as its own line.
//
// # Store Semantics
//
// The Store is append-only. Loading a file twice keeps both copies of every
// key and Get returns the earliest one, so a second load never overrides the
// first. Call Store.Clear (or Loader.Reload) to start over.
//
// # Usage Example
//
//	store := envfile.NewStore()
//	loader := envfile.NewLoader(store, envfile.WithLogger(logger))
//
//	if err := loader.Load(".env"); err != nil {
//		log.Fatal(err)
//	}
//
//	if url, ok := store.Get("URL"); ok {
//		fmt.Println(url)
//	}
//
// # Related Packages
//
//   - pkg/cache: LRU lookup cache in front of a Store
//   - pkg/watch: reloads a Store when its file changes
//   - pkg/export: renders a Store snapshot as yaml, json or dotenv
package envfile
