package postgres

import (
	"context"
	"fmt"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/persistence/db"
)

type AccountRepository struct {
	q *db.Queries
}

func NewAccountRepository(conn db.DBTX) *AccountRepository {
	return &AccountRepository{q: db.New(conn)}
}

func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	a, err := r.q.GetAccountByID(ctx, id.UUID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return dbAccountToDomain(a), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	a, err := r.q.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return dbAccountToDomain(a), nil
}

func (r *AccountRepository) List(ctx context.Context, pageSize int, pageToken string) (*domain.AccountPage, error) {
	after, err := pageAfter(pageToken)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.ListAccounts(ctx, db.ListAccountsParams{After: after, Limit: pageLimit(pageSize)})
	if err != nil {
		return nil, err
	}
	page := &domain.AccountPage{}
	for i, a := range rows {
		if i == pageSize {
			page.NextPageToken = rows[i-1].ID.String()
			break
		}
		page.Accounts = append(page.Accounts, dbAccountToDomain(a))
	}
	return page, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	provider := account.Provider
	if provider == "" {
		provider = domain.ProviderLocal
	}
	err := r.q.CreateAccount(ctx, db.Account{
		ID:               account.ID.UUID,
		Name:             account.Name,
		Email:            domain.NormalizeEmail(account.Email),
		Provider:         string(provider),
		UID:              account.UID,
		PasswordDigest:   account.PasswordDigest,
		Activated:        account.Activated,
		ActivatedAt:      account.ActivatedAt,
		ActivationDigest: account.ActivationDigest,
		Admin:            account.Admin,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	})
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	n, err := r.q.UpdateAccount(ctx, db.UpdateAccountParams{
		ID:             account.ID.UUID,
		Name:           account.Name,
		Email:          domain.NormalizeEmail(account.Email),
		PasswordDigest: account.PasswordDigest,
		Admin:          account.Admin,
		UpdatedAt:      account.UpdatedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrEmailTaken
		}
		return err
	}
	if n == 0 {
		return domerrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetActivationDigest(ctx context.Context, id domain.AccountID, digest string) error {
	n, err := r.q.SetActivationDigest(ctx, id.UUID, digest)
	if err != nil {
		return err
	}
	if n == 0 {
		return domerrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) MarkActivated(ctx context.Context, id domain.AccountID, digest string) (bool, error) {
	n, err := r.q.MarkActivated(ctx, id.UUID, digest)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id domain.AccountID) error {
	n, err := r.q.DeleteAccount(ctx, id.UUID)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if n == 0 {
		return domerrors.ErrAccountNotFound
	}
	return nil
}

func dbAccountToDomain(a db.Account) *domain.Account {
	return &domain.Account{
		ID:               domain.NewAccountID(a.ID),
		Name:             a.Name,
		Email:            a.Email,
		Provider:         domain.Provider(a.Provider),
		UID:              a.UID,
		PasswordDigest:   a.PasswordDigest,
		Activated:        a.Activated,
		ActivatedAt:      a.ActivatedAt,
		ActivationDigest: a.ActivationDigest,
		Admin:            a.Admin,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
