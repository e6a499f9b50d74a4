// Package storage persists completed interview reports and ingested
// role profiles in SQLite. Live sessions never touch this package; only
// final artifacts are written here.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for reports and role profiles.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "intervu.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Interview reports ---

func (s *Store) SaveReport(r InterviewReport) error {
	_, err := s.db.Exec(`
		INSERT INTO interview_reports (session_id, role, level, overall_score, total_questions, report_json, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Role, r.Level, r.OverallScore, r.TotalQuestions,
		r.ReportJSON, r.CompletedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetReport(sessionID string) (InterviewReport, error) {
	var r InterviewReport
	var completedAt string
	err := s.db.QueryRow(`
		SELECT session_id, role, level, overall_score, total_questions, report_json, completed_at
		FROM interview_reports WHERE session_id = ?`, sessionID,
	).Scan(&r.SessionID, &r.Role, &r.Level, &r.OverallScore, &r.TotalQuestions, &r.ReportJSON, &completedAt)
	if err == sql.ErrNoRows {
		return InterviewReport{}, ErrNotFound
	}
	if err != nil {
		return InterviewReport{}, err
	}
	t, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return InterviewReport{}, fmt.Errorf("parsing completed_at: %w", err)
	}
	r.CompletedAt = t
	return r, nil
}

func (s *Store) ListReports(limit int) ([]InterviewReport, error) {
	rows, err := s.db.Query(`
		SELECT session_id, role, level, overall_score, total_questions, report_json, completed_at
		FROM interview_reports ORDER BY completed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []InterviewReport
	for rows.Next() {
		var r InterviewReport
		var completedAt string
		if err := rows.Scan(&r.SessionID, &r.Role, &r.Level, &r.OverallScore, &r.TotalQuestions, &r.ReportJSON, &completedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
		r.CompletedAt = t
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- Role profiles ---

func (s *Store) SaveRoleProfile(p RoleProfile) error {
	_, err := s.db.Exec(`
		INSERT INTO role_profiles (id, title, content, source, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Content, p.Source, p.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetRoleProfile(id string) (RoleProfile, error) {
	var p RoleProfile
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, title, content, source, created_at
		FROM role_profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Source, &createdAt)
	if err == sql.ErrNoRows {
		return RoleProfile{}, ErrNotFound
	}
	if err != nil {
		return RoleProfile{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return RoleProfile{}, fmt.Errorf("parsing created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}

func (s *Store) ListRoleProfiles(limit int) ([]RoleProfile, error) {
	rows, err := s.db.Query(`
		SELECT id, title, content, source, created_at
		FROM role_profiles ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RoleProfile
	for rows.Next() {
		var p RoleProfile
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Source, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		p.CreatedAt = t
		results = append(results, p)
	}
	return results, rows.Err()
}
