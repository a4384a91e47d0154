package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Log is the append-only run log. Every line is written straight to the
// file descriptor, so entries survive a crash of the rest of the run.
// Appends from concurrent workers are serialized by a mutex so lines are
// never interleaved.
type Log struct {
	mu   sync.Mutex
	f    *os.File
	echo func(string)
}

// Open creates the log file, truncating any previous one, and writes a
// header line with the current timestamp and the page URL. Parent
// directories are created as needed. echo, when non-nil, receives a copy
// of every message (used to mirror the log to the console).
func Open(path, pageURL string, echo func(string)) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	l := &Log{f: f, echo: echo}
	l.Append("run started for " + pageURL)
	return l, nil
}

// Append writes "<timestamp> - <message>" as one line. The write reaches
// the OS before Append returns.
func (l *Log) Append(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "%s - %s\n", time.Now().Format(timeLayout), message)
	if l.echo != nil {
		l.echo(message)
	}
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
