// Package audit provides the append-only activity log written by every
// operation, attempted or completed.
//
// Entries go to two sinks: a human-readable text log (separator-delimited
// blocks, one per operation, readable with tail and grep during an incident)
// and a SQLite database for structured queries via "safechange log". The
// text log is the canonical record; the database is an index over it.
//
// # Fluent API
//
// Build and write entries with the builder:
//
//	audit.Event("cli:modify", "modify").
//		Actor(cmd.Identity()).
//		Path(p).
//		Backup(h.Path).
//		Write(err)
//
// The source follows "{surface}:{command}": "cli:modify", "mcp:rollback".
//
// # Failure policy
//
// Logging is best-effort: a sink failure is reported on stderr but never
// fails the operation whose effect has already happened. Concurrent
// invocations can interleave in both sinks - the text sink opens the file
// with O_APPEND for whatever single-write atomicity the OS gives, nothing
// more. See the concurrency note on internal/backup.
package audit

import (
	"fmt"
	"sync"
	"time"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry is one immutable activity record.
type Entry struct {
	Time    time.Time         `json:"time"`
	Source  string            `json:"source"`           // e.g. "cli:modify", "mcp:add"
	Op      string            `json:"op"`               // verb: modify, add, rollback
	Actor   string            `json:"actor,omitempty"`  // identity performing the operation
	Path    string            `json:"path,omitempty"`   // target file
	Backup  string            `json:"backup,omitempty"` // backup taken or restored from, if any
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Detail  map[string]string `json:"detail,omitempty"` // operation-specific data: search text, anchor
}

// Builder constructs an entry with a fluent API. Create with [Event], chain
// setters, finish with [Builder.Write].
type Builder struct {
	entry Entry
}

// Event starts a new entry for an operation identified by source
// ("{surface}:{command}") and op (the verb recorded in the log).
func Event(source, op string) *Builder {
	return &Builder{entry: Entry{Source: source, Op: op, Time: time.Now()}}
}

// Actor records the identity performing the operation.
func (b *Builder) Actor(actor string) *Builder {
	b.entry.Actor = actor
	return b
}

// Path records the target file.
func (b *Builder) Path(path string) *Builder {
	b.entry.Path = path
	return b
}

// Backup records the backup taken before the mutation, or the backup a
// rollback restored from.
func (b *Builder) Backup(path string) *Builder {
	b.entry.Backup = path
	return b
}

// Detail adds an operation-specific key/value pair. Call repeatedly for
// multiple details.
func (b *Builder) Detail(key, value string) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]string)
	}
	b.entry.Detail[key] = value
	return b
}

// Write completes the entry, deriving success/failure from err, and hands it
// to the global logger. No-op when the logger was never opened.
func (b *Builder) Write(err error) {
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger with the text log and database paths.
// Safe to call multiple times; the first call wins.
func Open(textPath, dbPath string) error {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return nil
	}
	l, err := newLogger(textPath, dbPath)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Log writes an entry through the global logger. Safe to call when the
// logger is not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to limit entries from the query store, newest first,
// optionally filtered by target path.
func Recent(limit int, path string) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return nil, fmt.Errorf("audit log not initialised")
	}
	return l.recent(limit, path)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.close()
		global = nil
	}
}
