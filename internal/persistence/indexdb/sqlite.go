// Package indexdb maintains a secondary SQLite index of the tick log so
// operators can inspect runs offline without scanning compressed JSONL.
// Writes go through a single background goroutine; losing the index never
// affects sim determinism.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"gridhive.ai/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Buffered so a bursty tick (many assigns) does not stall the sim.
		ch: make(chan world.TickLogEntry, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a decent
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assigns (
			tick INTEGER NOT NULL,
			worker_id TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			program_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assigns_worker ON assigns(worker_id, tick);`,
		`CREATE TABLE IF NOT EXISTS joins (
			tick INTEGER NOT NULL,
			worker_id TEXT NOT NULL,
			name TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteTick enqueues an entry; it never blocks the tick loop. Entries are
// dropped when the index cannot keep up.
func (s *SQLiteIndex) WriteTick(e world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- e:
	default:
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for e := range s.ch {
		s.writeEntry(e)
	}
}

func (s *SQLiteIndex) writeEntry(e world.TickLogEntry) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, _ = s.db.Exec(
		`INSERT OR REPLACE INTO ticks(tick, digest, recorded_at) VALUES(?,?,?)`,
		int64(e.Tick), e.Digest, now,
	)
	for _, j := range e.Joins {
		_, _ = s.db.Exec(
			`INSERT INTO joins(tick, worker_id, name) VALUES(?,?,?)`,
			int64(e.Tick), j.WorkerID, j.Name,
		)
	}
	for _, a := range e.Assigns {
		b, err := json.Marshal(a.Program)
		if err != nil {
			continue
		}
		_, _ = s.db.Exec(
			`INSERT INTO assigns(tick, worker_id, node_count, program_json) VALUES(?,?,?,?)`,
			int64(e.Tick), a.WorkerID, len(a.Program.Nodes), string(b),
		)
	}
}

// LatestTick reports the highest indexed tick.
func (s *SQLiteIndex) LatestTick() (uint64, bool, error) {
	var tick sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(tick) FROM ticks`).Scan(&tick); err != nil {
		return 0, false, err
	}
	if !tick.Valid {
		return 0, false, nil
	}
	return uint64(tick.Int64), true, nil
}

// AssignCountFor reports how many programs were assigned to a worker.
func (s *SQLiteIndex) AssignCountFor(workerID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assigns WHERE worker_id = ?`, workerID).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
