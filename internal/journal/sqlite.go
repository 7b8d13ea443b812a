package journal

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite journals entries into a SQLite database.
type SQLite struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates a SQLite journal at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Name identifies the sink in logs and metrics.
func (db *SQLite) Name() string { return "sqlite" }

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		agents INTEGER NOT NULL,
		locations INTEGER NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		category TEXT NOT NULL,
		agent TEXT NOT NULL,
		location TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Write appends entries in one transaction.
func (db *SQLite) Write(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT INTO events
		(run_id, tick, day, hour, minute, category, agent, location, description)
		VALUES (:run_id, :tick, :day, :hour, :minute, :category, :agent, :location, :description)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}
	return tx.Commit()
}

// StartRun stores the run's metadata.
func (db *SQLite) StartRun(r Run) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO runs
		(id, started_at, agents, locations, ticks, summary)
		VALUES (:id, :started_at, :agents, :locations, :ticks, :summary)`, r)
	return err
}

// FinishRun records how far the run got.
func (db *SQLite) FinishRun(id string, ticks uint64, summary string) error {
	res, err := db.conn.Exec("UPDATE runs SET ticks = ?, summary = ? WHERE id = ?", ticks, summary, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: run not started", id)
	}
	return nil
}

// Run returns the stored metadata of a run.
func (db *SQLite) Run(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT id, started_at, agents, locations, ticks, summary FROM runs WHERE id = ?", id)
	return r, err
}

// Entries returns up to limit entries of a run, oldest first.
func (db *SQLite) Entries(runID string, limit int) ([]Entry, error) {
	var entries []Entry
	err := db.conn.Select(&entries,
		`SELECT run_id, tick, day, hour, minute, category, agent, location, description
		 FROM events WHERE run_id = ? ORDER BY id LIMIT ?`,
		runID, limit,
	)
	return entries, err
}

// CountByCategory returns how many entries of each category a run logged.
func (db *SQLite) CountByCategory(runID string) (map[string]int, error) {
	rows, err := db.conn.Queryx("SELECT category, COUNT(*) FROM events WHERE run_id = ? GROUP BY category", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[cat] = n
	}
	return out, rows.Err()
}

// RunIDs lists the stored runs, oldest first.
func (db *SQLite) RunIDs() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids, "SELECT id FROM runs ORDER BY started_at, id")
	return ids, err
}
