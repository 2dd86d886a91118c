// Package accesslog writes the per-scan log of access errors and skipped
// nodes. Writes are unbuffered: every line reaches the destination before
// LogError returns.
package accesslog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// TimeFormat is the timestamp layout used in the log.
const TimeFormat = "2006-01-02T15:04:05.000"

const rule = "==============================================="

// ErrClosed is returned by Close after the first call.
var ErrClosed = errors.New("access log already closed")

// Header describes the scan in the banner written when the log opens.
type Header struct {
	Started    time.Time
	Root       string
	MaxDepth   int
	SkipHidden bool
	ScanID     string
}

// Log is a goroutine-safe diagnostic sink backed by a file or, as a
// fallback, a console writer.
type Log struct {
	mu      sync.Mutex
	w       io.Writer
	file    *os.File
	path    string
	console bool
	closed  bool
	now     func() time.Time
}

// Open creates or truncates path and writes the header banner.
func Open(path string, h Header) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create access log: %w", err)
	}
	l := &Log{w: f, file: f, path: path, now: time.Now}
	if err := l.writeHeader(h); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// OpenOrConsole is Open with a fallback: when the file cannot be created
// the log writes to console instead and UsingConsole reports true.
func OpenOrConsole(path string, h Header, console io.Writer) *Log {
	l, err := Open(path, h)
	if err == nil {
		return l
	}
	slog.Warn("could not create access log file, using console", "path", path, "error", err)
	return &Log{w: console, console: true, now: time.Now}
}

// UsingConsole reports whether the log fell back to the console.
func (l *Log) UsingConsole() bool { return l.console }

// Path returns the log file path, or "" when writing to the console.
func (l *Log) Path() string { return l.path }

// LogError appends "<timestamp> - msg". Write failures are dropped; the
// scan must not stop because its diagnostics cannot be written.
func (l *Log) LogError(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_, _ = fmt.Fprintf(l.w, "%s - %s\n", l.now().Format(TimeFormat), msg)
}

// Close writes the closing banner and releases the file. Only the first
// call has any effect.
func (l *Log) Close(interrupted bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true

	status := "Scan completed at: "
	if interrupted {
		status = "Scan interrupted by user (Ctrl-C) at: "
	}
	_, werr := fmt.Fprintf(l.w, "%s\n%s%s\n", rule, status, l.now().Format(TimeFormat))
	if l.file == nil {
		return werr
	}
	if err := l.file.Close(); err != nil {
		return errors.Join(werr, fmt.Errorf("close access log: %w", err))
	}
	return werr
}

func (l *Log) writeHeader(h Header) error {
	var b strings.Builder
	b.WriteString("Filesystem scan access errors and skipped files log\n")
	fmt.Fprintf(&b, "Scan started at: %s\n", h.Started.Format(TimeFormat))
	fmt.Fprintf(&b, "Directory: %s\n", h.Root)
	fmt.Fprintf(&b, "Max depth: %d\n", h.MaxDepth)
	fmt.Fprintf(&b, "Skip hidden: %t\n", h.SkipHidden)
	if h.ScanID != "" {
		fmt.Fprintf(&b, "Scan ID: %s\n", h.ScanID)
	}
	b.WriteString(rule + "\n")
	if _, err := io.WriteString(l.w, b.String()); err != nil {
		return fmt.Errorf("write access log header: %w", err)
	}
	return nil
}
