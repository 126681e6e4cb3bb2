package server

import (
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS generations (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	student  TEXT NOT NULL,
	source   TEXT NOT NULL,
	created  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS generations_created ON generations(created);
`

// Record describes single generated assignment.
type Record struct {
	ID      string
	Title   string
	Student string
	Source  string
	Created time.Time
}

// History keeps most recent generations in sqlite database. Nil history
// keeps nothing.
type History struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	size int
}

// OpenHistory opens (creating when necessary) database at path, at most size
// records are kept.
func OpenHistory(path string, size int) (*History, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, historySchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("prepare history schema: %w", err)
	}
	return &History{conn: conn, size: max(size, 1)}, nil
}

// Add stores record and drops the oldest ones over the limit.
func (h *History) Add(rec Record) (err error) {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	endFn, err := sqlitex.ImmediateTransaction(h.conn)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer endFn(&err)

	err = sqlitex.Execute(h.conn,
		`INSERT OR REPLACE INTO generations (id, title, student, source, created) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{rec.ID, rec.Title, rec.Student, rec.Source, rec.Created.UnixNano()}})
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	err = sqlitex.Execute(h.conn,
		`DELETE FROM generations WHERE id NOT IN (SELECT id FROM generations ORDER BY created DESC LIMIT ?)`,
		&sqlitex.ExecOptions{Args: []any{h.size}})
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// Recent returns stored records, newest first.
func (h *History) Recent() ([]Record, error) {
	if h == nil {
		return nil, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var records []Record
	err := sqlitex.Execute(h.conn,
		`SELECT id, title, student, source, created FROM generations ORDER BY created DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{h.size},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, Record{
					ID:      stmt.ColumnText(0),
					Title:   stmt.ColumnText(1),
					Student: stmt.ColumnText(2),
					Source:  stmt.ColumnText(3),
					Created: time.Unix(0, stmt.ColumnInt64(4)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

func (h *History) Close() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.Close()
}
