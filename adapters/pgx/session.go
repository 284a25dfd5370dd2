package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/tipon/core"
)

func (a *Adapter) CreateSession(session *core.Session) error {
	ctx := context.Background()

	// The session id and timestamps are generated by the session manager,
	// the row records them as given.
	query := `INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := a.pool.Exec(ctx, query,
		session.ID, session.UserID, session.TokenHash,
		session.IPAddress, session.UserAgent,
		session.ExpiresAt, session.CreatedAt, session.UpdatedAt,
	)
	return err
}

func (a *Adapter) scanSession(row pgx.Row) (*core.Session, error) {
	session := &core.Session{}
	err := row.Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.IPAddress, &session.UserAgent,
		&session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at`

func (a *Adapter) GetSessionByHash(tokenHash string) (*core.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE token_hash = $1`
	return a.scanSession(a.pool.QueryRow(ctx, q, tokenHash))
}

func (a *Adapter) GetSessionByID(id string) (*core.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return a.scanSession(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserSessions(userID string) ([]*core.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		session := &core.Session{}
		err := rows.Scan(
			&session.ID, &session.UserID, &session.TokenHash,
			&session.IPAddress, &session.UserAgent,
			&session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (a *Adapter) UpdateSession(session *core.Session) error {
	ctx := context.Background()
	q := `UPDATE sessions SET expires_at = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q, session.ExpiresAt, session.ID).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrSessionNotFound
		}
		return err
	}
	session.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) DeleteSessionByID(id string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (a *Adapter) DeleteSessionByHash(tokenHash string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (a *Adapter) DeleteUserSessions(userID string) (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteExpiredSessions() (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
