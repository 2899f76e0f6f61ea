package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/observability"
)

// MaxLineLength is the read buffer size per line, terminator included. A
// fragment holds at most MaxLineLength-1 bytes; longer lines are split.
const MaxLineLength = 1024

// Loader parses env files into a Store.
type Loader struct {
	store           *Store
	logger          logrus.FieldLogger
	metrics         *observability.Metrics
	newline         string
	maxLineLength   int
	initialCapacity int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load progress and skipped lines.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records load outcomes to metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(l *Loader) {
		l.metrics = metrics
	}
}

// WithNewline overrides the preferred newline sequence (PlatformNewline by default).
func WithNewline(newline string) Option {
	return func(l *Loader) {
		l.newline = newline
	}
}

// WithMaxLineLength overrides MaxLineLength. Values below 2 are ignored.
func WithMaxLineLength(n int) Option {
	return func(l *Loader) {
		if n >= 2 {
			l.maxLineLength = n
		}
	}
}

// WithInitialCapacity sets the capacity passed to Store.Init.
func WithInitialCapacity(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.initialCapacity = n
		}
	}
}

// NewLoader creates a loader that appends to store.
func NewLoader(store *Store, opts ...Option) *Loader {
	l := &Loader{
		store:           store,
		logger:          observability.NopLogger(),
		newline:         PlatformNewline,
		maxLineLength:   MaxLineLength,
		initialCapacity: DefaultInitialCapacity,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the store the loader appends to.
func (l *Loader) Store() *Store {
	return l.store
}

// ForStore returns a copy of the loader that appends to store instead.
func (l *Loader) ForStore(store *Store) *Loader {
	clone := *l
	clone.store = store
	return &clone
}

// Load parses the file at path and appends its entries to the store.
//
// Keys already in the store keep their value: lookups return the first entry.
// A failure part-way through leaves the entries appended so far in place.
func (l *Loader) Load(path string) error {
	start := time.Now()
	logger := l.logger.WithField("path", path)

	if err := l.store.Init(l.initialCapacity); err != nil {
		l.metrics.RecordLoad(observability.StatusFailure, time.Since(start), 0)
		return fmt.Errorf("initialize store: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.WithError(err).Error("Failed to open env file")
		l.metrics.RecordLoad(observability.StatusFailure, time.Since(start), 0)
		return fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer f.Close()

	return l.load(f, path, logger, start)
}

// LoadReader is Load for an already open reader. name is used in logs and errors.
func (l *Loader) LoadReader(r io.Reader, name string) error {
	start := time.Now()
	logger := l.logger.WithField("path", name)

	if err := l.store.Init(l.initialCapacity); err != nil {
		l.metrics.RecordLoad(observability.StatusFailure, time.Since(start), 0)
		return fmt.Errorf("initialize store: %w", err)
	}

	return l.load(r, name, logger, start)
}

// LoadFiles loads each path in order and stops at the first failure.
func (l *Loader) LoadFiles(paths ...string) error {
	for _, path := range paths {
		if err := l.Load(path); err != nil {
			return err
		}
	}
	return nil
}

// Reload clears the store and loads paths again, which is the only way to
// replace values that are already loaded.
func (l *Loader) Reload(paths ...string) error {
	l.store.Clear()
	return l.LoadFiles(paths...)
}

func (l *Loader) load(r io.Reader, name string, logger logrus.FieldLogger, start time.Time) error {
	reader := newFragmentReader(r, l.maxLineLength)
	logger.Debug("Loading env file")

	var appended, skipped int
	for {
		fragment, readErr := reader.next()
		lineNum := reader.line

		if fragment != "" {
			if reader.truncated {
				logger.WithField("line", lineNum).Warnf("Line exceeds %d bytes and is parsed as separate fragments", l.maxLineLength-1)
			}

			key, value, reason := parseFragment(fragment, l.newline)
			switch {
			case reason.malformed():
				skipped++
				l.metrics.RecordSkippedLine(string(reason))
				logger.WithFields(logrus.Fields{
					"line":   lineNum,
					"reason": string(reason),
				}).Debug("Skipping malformed line")
			case reason == skipNone:
				resolved := l.store.Resolve(value)
				if err := l.store.Append(key, resolved); err != nil {
					logger.WithError(err).WithField("line", lineNum).Error("Failed to append entry")
					l.finish(observability.StatusFailure, start, appended)
					return fmt.Errorf("%s line %d: %w", name, lineNum, err)
				}
				appended++
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			logger.WithError(readErr).Error("Failed to read env file")
			l.finish(observability.StatusFailure, start, appended)
			return fmt.Errorf("read %s: %w", name, readErr)
		}
	}

	l.finish(observability.StatusSuccess, start, appended)
	logger.WithFields(logrus.Fields{
		"entries":  appended,
		"skipped":  skipped,
		"duration": time.Since(start),
	}).Info("Loaded env file")
	return nil
}

func (l *Loader) finish(status string, start time.Time, appended int) {
	l.metrics.RecordLoad(status, time.Since(start), appended)
	l.metrics.SetStoreEntries(l.store.Len())
}

// fragmentReader hands out input in pieces of at most limit-1 bytes, each
// ending after the first '\n' when one comes sooner.
type fragmentReader struct {
	r     *bufio.Reader
	limit int
	buf   []byte

	// line is the physical line the last fragment came from. Pieces of an
	// overlong line share its number.
	line        int
	atLineStart bool

	// truncated is set when the last fragment filled the buffer without
	// reaching a newline.
	truncated bool
}

func newFragmentReader(r io.Reader, limit int) *fragmentReader {
	return &fragmentReader{
		r:           bufio.NewReader(r),
		limit:       limit,
		buf:         make([]byte, 0, limit),
		atLineStart: true,
	}
}

func (fr *fragmentReader) next() (string, error) {
	fr.buf = fr.buf[:0]
	fr.truncated = false
	if fr.atLineStart {
		fr.line++
		fr.atLineStart = false
	}

	for len(fr.buf) < fr.limit-1 {
		c, err := fr.r.ReadByte()
		if err != nil {
			return string(fr.buf), err
		}
		fr.buf = append(fr.buf, c)
		if c == '\n' {
			fr.atLineStart = true
			return string(fr.buf), nil
		}
	}

	if next, err := fr.r.Peek(1); err == nil && next[0] != '\n' && next[0] != '\r' {
		fr.truncated = true
	}
	return string(fr.buf), nil
}
