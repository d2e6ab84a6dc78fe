// Package db persists exercise sessions and completed repetition records in
// sqlite. The per-frame pipeline never blocks on the database; records are
// written as repetitions complete.
package db

import (
	"compress/gzip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/session"
)

type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the session database at path and ensures
// the bootstrap schema exists. Schema evolution beyond the bootstrap is
// handled by the migration files under migrations/.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			exercise          TEXT NOT NULL,
			started_at        TIMESTAMP NOT NULL,
			ended_at          TIMESTAMP,
			rep_count         INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS reps (
			session_id        TEXT NOT NULL,
			rep_number        INTEGER NOT NULL,
			feedback          TEXT NOT NULL,
			driving_metric    DOUBLE,
			extremal          TEXT,
			completed_at      TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, rep_number),
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, path: path}, nil
}

// SessionRow is a stored session.
type SessionRow struct {
	SessionID string     `json:"session_id"`
	Exercise  string     `json:"exercise"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	RepCount  int        `json:"rep_count"`
}

// CreateSession inserts a new session row.
func (db *DB) CreateSession(id string, kind exercise.Kind, startedAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, exercise, started_at) VALUES (?, ?, ?)`,
		id, string(kind), startedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// EndSession stamps the session's end time and final rep count.
func (db *DB) EndSession(id string, endedAt time.Time, repCount int) error {
	res, err := db.Exec(
		`UPDATE sessions SET ended_at = ?, rep_count = ? WHERE session_id = ?`,
		endedAt, repCount, id,
	)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %q not found", id)
	}
	return nil
}

// GetSession returns one stored session.
func (db *DB) GetSession(id string) (*SessionRow, error) {
	row := db.QueryRow(
		`SELECT session_id, exercise, started_at, ended_at, rep_count FROM sessions WHERE session_id = ?`, id)
	var s SessionRow
	if err := row.Scan(&s.SessionID, &s.Exercise, &s.StartedAt, &s.EndedAt, &s.RepCount); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT session_id, exercise, started_at, ended_at, rep_count FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.SessionID, &s.Exercise, &s.StartedAt, &s.EndedAt, &s.RepCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordRep persists one completed repetition. The extremal snapshot is
// stored as JSON; drivingValue is denormalized so stats queries avoid
// parsing the JSON blob.
func (db *DB) RecordRep(sessionID string, rec session.Record, drivingValue float64) error {
	extremal, err := json.Marshal(rec.Extremal)
	if err != nil {
		return fmt.Errorf("failed to marshal extremal metrics: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO reps (session_id, rep_number, feedback, driving_metric, extremal, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, rec.RepNumber, rec.Feedback, drivingValue, string(extremal), rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record rep: %w", err)
	}
	_, err = db.Exec(`UPDATE sessions SET rep_count = ? WHERE session_id = ?`, rec.RepNumber, sessionID)
	return err
}

// RepRow is a stored repetition record.
type RepRow struct {
	SessionID     string                  `json:"session_id"`
	RepNumber     int                     `json:"rep_number"`
	Feedback      string                  `json:"feedback"`
	DrivingMetric float64                 `json:"driving_metric"`
	Extremal      exercise.MetricSnapshot `json:"extremal"`
	CompletedAt   time.Time               `json:"completed_at"`
}

// ListReps returns a session's repetitions in rep order.
func (db *DB) ListReps(sessionID string) ([]RepRow, error) {
	rows, err := db.Query(
		`SELECT session_id, rep_number, feedback, driving_metric, extremal, completed_at
		 FROM reps WHERE session_id = ? ORDER BY rep_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RepRow
	for rows.Next() {
		var r RepRow
		var extremal string
		if err := rows.Scan(&r.SessionID, &r.RepNumber, &r.Feedback, &r.DrivingMetric, &extremal, &r.CompletedAt); err != nil {
			return nil, err
		}
		if extremal != "" {
			if err := json.Unmarshal([]byte(extremal), &r.Extremal); err != nil {
				return nil, fmt.Errorf("failed to unmarshal extremal metrics for rep %d: %w", r.RepNumber, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AttachAdminRoutes mounts the debug surface: a tailsql live SQL console and
// an on-demand gzip backup download. Meant for dev mode or behind the
// operator's own proxy; nothing here is authenticated.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Session DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		// close the backup file after sending it and remove it from disk
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
