package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultPostgresTable is the table used by PostgresBackend unless overridden.
const DefaultPostgresTable = "gogate_sessions"

// DBTX is the subset of pgx used by PostgresBackend. *pgxpool.Pool, *pgx.Conn
// and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend persists sessions in a single table:
//
//	CREATE TABLE gogate_sessions (
//	    id         TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//
// A NULL expires_at marks a session without expiry.
type PostgresBackend struct {
	db    DBTX
	table string

	upsertSQL string
	selectSQL string
	deleteSQL string
}

// NewPostgresBackend creates a backend on db. An empty table uses
// DefaultPostgresTable.
func NewPostgresBackend(db DBTX, table string) *PostgresBackend {
	if table == "" {
		table = DefaultPostgresTable
	}
	ident := pgx.Identifier{table}.Sanitize()

	return &PostgresBackend{
		db:    db,
		table: ident,
		upsertSQL: fmt.Sprintf(`INSERT INTO %s (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`, ident),
		selectSQL: fmt.Sprintf(`SELECT user_id, created_at, expires_at FROM %s WHERE id = $1`, ident),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, ident),
	}
}

// EnsureSchema creates the session table when it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ
)`, p.table))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Put upserts sess.
func (p *PostgresBackend) Put(ctx context.Context, sess Session) error {
	if sess.SessionID == "" || sess.UserID == "" {
		return errors.New("session: missing session_id or user_id")
	}

	var expires *time.Time
	if sess.HasExpiry() {
		e := sess.ExpiresAt.UTC()
		expires = &e
	}

	if _, err := p.db.Exec(ctx, p.upsertSQL, sess.SessionID, sess.UserID, sess.CreatedAt.UTC(), expires); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Get loads the row for sessionID.
func (p *PostgresBackend) Get(ctx context.Context, sessionID string) (Session, error) {
	var (
		userID    string
		createdAt time.Time
		expiresAt *time.Time
	)

	err := p.db.QueryRow(ctx, p.selectSQL, sessionID).Scan(&userID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	sess := Session{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
	if expiresAt != nil {
		sess.ExpiresAt = *expiresAt
	}
	return sess, nil
}

// Delete removes the row and reports whether one existed.
func (p *PostgresBackend) Delete(ctx context.Context, sessionID string) (bool, error) {
	tag, err := p.db.Exec(ctx, p.deleteSQL, sessionID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}
