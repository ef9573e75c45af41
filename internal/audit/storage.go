// storage.go implements the two audit sinks: the append-only text log and
// the SQLite query store.
//
// Separated from audit.go to isolate persistence from the builder API.
// The text sink is the canonical record - a flat file an operator can tail
// during a change window. SQLite adds the filtering and limits
// that a flat file cannot, for "safechange log". The host field is a short
// blake2b hash of the state directory so logs merged from several hosts
// stay distinguishable without embedding raw paths.
//
// Design: sink errors are reported on stderr and otherwise swallowed. A
// completed file edit must not be failed retroactively because its record
// could not be written; the operator still sees the warning.

package audit

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// separator delimits entries in the text log.
const separator = "------------------------------------------------------------"

// timeLayout is the timestamp format in the text log.
const timeLayout = "2006-01-02 15:04:05"

// Logger owns both sinks.
type Logger struct {
	textPath string
	db       *sql.DB
	host     string
}

func newLogger(textPath, dbPath string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(textPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	return &Logger{textPath: textPath, db: db, host: hash(dbPath)}, nil
}

func (l *Logger) close() {
	_ = l.db.Close()
}

func (l *Logger) log(e Entry) {
	if err := l.appendText(e); err != nil {
		fmt.Fprintf(os.Stderr, "safechange: activity log write failed: %v\n", err)
	}
	if err := l.insert(e); err != nil {
		fmt.Fprintf(os.Stderr, "safechange: audit db write failed: %v\n", err)
	}
}

// appendText writes one separator-delimited block. O_APPEND gives whatever
// single-write atomicity the OS provides; concurrent invocations are not
// otherwise coordinated.
func (l *Logger) appendText(e Entry) error {
	f, err := os.OpenFile(l.textPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(formatEntry(e))
	return err
}

// formatEntry renders an entry as a text log block.
func formatEntry(e Entry) string {
	var b strings.Builder
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "%s  actor=%s  op=%s  source=%s\n", e.Time.Format(timeLayout), orDash(e.Actor), e.Op, e.Source)
	if e.Path != "" {
		fmt.Fprintf(&b, "  target: %s\n", e.Path)
	}
	if e.Backup != "" {
		fmt.Fprintf(&b, "  backup: %s\n", e.Backup)
	}
	for _, k := range sortedKeys(e.Detail) {
		fmt.Fprintf(&b, "  %s: %s\n", k, e.Detail[k])
	}
	if e.Success {
		b.WriteString("  result: ok\n")
	} else {
		fmt.Fprintf(&b, "  result: FAILED: %s\n", e.Error)
	}
	return b.String()
}

func (l *Logger) insert(e Entry) error {
	var detail *string
	if len(e.Detail) > 0 {
		if raw, err := json.Marshal(e.Detail); err == nil {
			s := string(raw)
			detail = &s
		}
	}
	success := 0
	if e.Success {
		success = 1
	}
	_, err := l.db.Exec(`
		INSERT INTO activity (ts, host, source, op, actor, path, backup, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.Unix(), l.host, e.Source, e.Op, nilIfEmpty(e.Actor),
		nilIfEmpty(e.Path), nilIfEmpty(e.Backup), success, nilIfEmpty(e.Error), detail,
	)
	return err
}

func (l *Logger) recent(limit int, path string) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ts, source, op, actor, path, backup, success, error, detail
		FROM activity`
	args := []any{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		var actor, p, bak, errMsg, detail sql.NullString
		var success int
		if err := rows.Scan(&ts, &e.Source, &e.Op, &actor, &p, &bak, &success, &errMsg, &detail); err != nil {
			return nil, err
		}
		e.Time = time.Unix(ts, 0)
		e.Actor = actor.String
		e.Path = p.String
		e.Backup = bak.String
		e.Success = success == 1
		e.Error = errMsg.String
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &e.Detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS activity (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			ts      INTEGER NOT NULL,
			host    TEXT NOT NULL,
			source  TEXT NOT NULL,
			op      TEXT NOT NULL,
			actor   TEXT,
			path    TEXT,
			backup  TEXT,
			success INTEGER NOT NULL,
			error   TEXT,
			detail  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_activity_path ON activity(path);
		CREATE INDEX IF NOT EXISTS idx_activity_ts ON activity(ts);
	`)
	return err
}

// hash derives a short host/store identifier from the database path.
func hash(s string) string {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
