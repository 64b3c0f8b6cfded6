// Package db provides PostgreSQL persistence for conversation sessions.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/session"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// SaveSession inserts or updates a session record. Messages are stored
// separately with AppendMessage.
func (db *DB) SaveSession(ctx context.Context, s *session.Session) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO sessions (id, phase, asked, answers, profile, rule, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   phase = $2, asked = $3, answers = $4, profile = $5, rule = $6, updated_at = $8`,
		row.ID, row.Phase, row.Asked, row.Answers, row.Profile, row.Rule, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}

// GetSession retrieves a session record without its messages.
// Returns nil, nil when the session does not exist.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var row SessionRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, phase, asked, answers, profile, rule, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Phase, &row.Asked, &row.Answers, &row.Profile, &row.Rule, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return row.toSession()
}

// LoadSession retrieves a session together with its message history.
// Returns nil, nil when the session does not exist.
func (db *DB) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s, err := db.GetSession(ctx, id)
	if err != nil || s == nil {
		return s, err
	}

	msgs, err := db.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Messages = msgs
	return s, nil
}

// AppendMessage adds a message to a session's history
func (db *DB) AppendMessage(ctx context.Context, sessionID uuid.UUID, m session.Message) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO session_messages (session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4)`,
		sessionID, string(m.Role), m.Content, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages in the order they were written
func (db *DB) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]session.Message, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT role, content, created_at FROM session_messages
		 WHERE session_id = $1 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs := []session.Message{}
	for rows.Next() {
		var m session.Message
		var role string
		if err := rows.Scan(&role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = session.Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// ProfileCounts returns how many classified sessions ended in each profile,
// most common first
func (db *DB) ProfileCounts(ctx context.Context) ([]ProfileCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT profile, COUNT(*) FROM sessions
		 WHERE profile IS NOT NULL AND profile <> ''
		 GROUP BY profile ORDER BY COUNT(*) DESC, profile ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}
	defer rows.Close()

	counts := []ProfileCount{}
	for rows.Next() {
		var c ProfileCount
		if err := rows.Scan(&c.Profile, &c.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan profile count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}
	return counts, nil
}

// DeleteSession deletes a session and its messages (via cascade)
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

func toRow(s *session.Session) (SessionRow, error) {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return SessionRow{}, fmt.Errorf("failed to marshal answers: %w", err)
	}

	row := SessionRow{
		ID:        s.ID,
		Phase:     string(s.Phase),
		Asked:     s.Asked,
		Answers:   answers,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Profile != "" {
		p := string(s.Profile)
		row.Profile = &p
	}
	if s.Rule != "" {
		r := s.Rule
		row.Rule = &r
	}
	return row, nil
}

func (r SessionRow) toSession() (*session.Session, error) {
	s := &session.Session{
		ID:        r.ID,
		Phase:     session.Phase(r.Phase),
		Asked:     r.Asked,
		Answers:   map[string]string{},
		Messages:  []session.Message{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}
	if r.Profile != nil {
		s.Profile = profile.ID(*r.Profile)
	}
	if r.Rule != nil {
		s.Rule = *r.Rule
	}
	return s, nil
}
