// Package store persists submitted responses in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/assessment/internal/models"
)

// ErrNotFound is returned when no response matches a lookup
var ErrNotFound = errors.New("response not found")

// Store manages the SQLite response database
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each pooled connection would get its own in-memory database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must be first so the remaining pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path the store was opened with
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create persists resp. A missing UUID is generated; ID and timestamps are set on resp.
func (s *Store) Create(ctx context.Context, resp *models.Response) error {
	if resp.AssessmentSlug == "" {
		return fmt.Errorf("insert response: assessment slug is required")
	}
	if resp.UUID == "" {
		resp.UUID = uuid.NewString()
	}

	answers := resp.Answers
	if answers == nil {
		answers = models.Answers{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	now := s.now()
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = now
	}
	resp.UpdatedAt = now

	var leadName, leadEmail sql.NullString
	if !resp.Lead.IsEmpty() {
		leadName = nullString(resp.Lead.Name)
		leadEmail = nullString(resp.Lead.Email)
	}

	query := `INSERT INTO responses
		(uuid, assessment_slug, answers, result, lead_name, lead_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		resp.UUID,
		resp.AssessmentSlug,
		string(answersJSON),
		resp.Result,
		leadName,
		leadEmail,
		resp.CreatedAt,
		resp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	resp.ID = id
	return nil
}

const selectColumns = `SELECT id, uuid, assessment_slug, answers, result, lead_name, lead_email, created_at, updated_at FROM responses`

// FindByUUID loads the response with the given uuid belonging to slug
func (s *Store) FindByUUID(ctx context.Context, slug, id string) (*models.Response, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE assessment_slug = ? AND uuid = ?`, slug, id)
	resp, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", slug, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListForAssessment returns responses for slug, most recent first. A limit <= 0 returns all.
func (s *Store) ListForAssessment(ctx context.Context, slug string, limit int) ([]*models.Response, error) {
	query := selectColumns + ` WHERE assessment_slug = ? ORDER BY id DESC`
	args := []interface{}{slug}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var responses []*models.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate response rows: %w", err)
	}
	return responses, nil
}

// CountForAssessment returns the number of stored responses for slug
func (s *Store) CountForAssessment(ctx context.Context, slug string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses WHERE assessment_slug = ?`, slug).Scan(&count); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResponse(row scanner) (*models.Response, error) {
	resp := &models.Response{}
	var answersJSON string
	var result, leadName, leadEmail sql.NullString

	err := row.Scan(
		&resp.ID,
		&resp.UUID,
		&resp.AssessmentSlug,
		&answersJSON,
		&result,
		&leadName,
		&leadEmail,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan response row: %w", err)
	}

	if result.Valid {
		resp.Result = result.String
	}
	if leadName.Valid || leadEmail.Valid {
		resp.Lead = &models.Lead{Name: leadName.String, Email: leadEmail.String}
	}

	resp.Answers = models.Answers{}
	if answersJSON != "" {
		if err := json.Unmarshal([]byte(answersJSON), &resp.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return resp, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
