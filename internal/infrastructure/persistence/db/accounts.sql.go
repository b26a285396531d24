package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const accountColumns = `id, name, email, provider, uid, password_digest, activated, activated_at, activation_digest, admin, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Provider,
		&a.UID,
		&a.PasswordDigest,
		&a.Activated,
		&a.ActivatedAt,
		&a.ActivationDigest,
		&a.Admin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

const getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccountByID, id))
}

const getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccountByEmail, email))
}

const listAccounts = `SELECT ` + accountColumns + ` FROM accounts WHERE id > $1 ORDER BY id LIMIT $2`

type ListAccountsParams struct {
	After uuid.UUID
	Limit int32
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.After, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const createAccount = `INSERT INTO accounts (` + accountColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (q *Queries) CreateAccount(ctx context.Context, a Account) error {
	_, err := q.db.Exec(ctx, createAccount,
		a.ID,
		a.Name,
		a.Email,
		a.Provider,
		a.UID,
		a.PasswordDigest,
		a.Activated,
		a.ActivatedAt,
		a.ActivationDigest,
		a.Admin,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

const updateAccount = `UPDATE accounts
SET name = $2, email = $3, password_digest = $4, admin = $5, updated_at = $6
WHERE id = $1`

type UpdateAccountParams struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PasswordDigest string
	Admin          bool
	UpdatedAt      time.Time
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateAccount, arg.ID, arg.Name, arg.Email, arg.PasswordDigest, arg.Admin, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const setActivationDigest = `UPDATE accounts SET activation_digest = $2, updated_at = NOW() WHERE id = $1`

func (q *Queries) SetActivationDigest(ctx context.Context, id uuid.UUID, digest string) (int64, error) {
	tag, err := q.db.Exec(ctx, setActivationDigest, id, digest)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// markActivated only matches while the stored digest is still the one the token was checked against.
const markActivated = `UPDATE accounts
SET activated = TRUE, activated_at = NOW(), activation_digest = '', updated_at = NOW()
WHERE id = $1 AND activated = FALSE AND activation_digest = $2 AND activation_digest <> ''`

func (q *Queries) MarkActivated(ctx context.Context, id uuid.UUID, digest string) (int64, error) {
	tag, err := q.db.Exec(ctx, markActivated, id, digest)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteAccount = `DELETE FROM accounts WHERE id = $1`

func (q *Queries) DeleteAccount(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
