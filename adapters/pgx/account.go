package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/tipon/core"
)

func (a *Adapter) CreateAccount(account *core.Account) error {
	ctx := context.Background()

	query := `INSERT INTO accounts (user_id, provider_id, account_id, password, expires_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	var id string
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query,
		account.UserID, account.ProviderID, account.AccountID, account.Password, account.ExpiresAt,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return err
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetAccountByID(id string) (*core.Account, error) {
	ctx := context.Background()
	q := `SELECT id, user_id, provider_id, account_id, password, expires_at, created_at, updated_at
	      FROM accounts WHERE id = $1`

	account := &core.Account{}
	err := a.pool.QueryRow(ctx, q, id).Scan(
		&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
		&account.Password, &account.ExpiresAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

func (a *Adapter) GetAccountByUserAndProvider(userID, providerID string) ([]*core.Account, error) {
	ctx := context.Background()
	q := `SELECT id, user_id, provider_id, account_id, password, expires_at, created_at, updated_at
	      FROM accounts WHERE user_id = $1 AND provider_id = $2`

	rows, err := a.pool.Query(ctx, q, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		account := &core.Account{}
		err := rows.Scan(
			&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
			&account.Password, &account.ExpiresAt, &account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (a *Adapter) UpdateAccount(account *core.Account) error {
	ctx := context.Background()
	q := `UPDATE accounts SET password = $1, expires_at = $2, updated_at = now() WHERE id = $3 RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q, account.Password, account.ExpiresAt, account.ID).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrUserNotFound
		}
		return err
	}
	account.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) DeleteAccount(id string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return nil
}
