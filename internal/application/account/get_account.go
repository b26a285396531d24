package account

import (
	"context"
	"fmt"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

type GetAccountInput struct {
	Actor             domain.Actor
	AccountID         domain.AccountID
	ProjectsPageToken string
}

// GetAccountResult is the account profile with one page of its projects.
type GetAccountResult struct {
	Account           domain.AccountDetail
	Projects          []*domain.Project
	NextProjectsToken string
}

// GetAccount shows an account and the projects it owns.
type GetAccount struct {
	accounts ports.AccountRepository
	projects ports.ProjectRepository
}

func NewGetAccount(accounts ports.AccountRepository, projects ports.ProjectRepository) *GetAccount {
	return &GetAccount{accounts: accounts, projects: projects}
}

func (uc *GetAccount) Execute(ctx context.Context, input GetAccountInput) (*GetAccountResult, error) {
	if !domain.CanEditOrView(input.Actor, input.AccountID) {
		return nil, domerrors.ErrUnauthorized
	}
	account, err := loadAccount(ctx, uc.accounts, input.AccountID)
	if err != nil {
		return nil, err
	}
	page, err := uc.projects.ListByOwner(ctx, account.ID, DefaultPageSize, input.ProjectsPageToken)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &GetAccountResult{
		Account:           account.Detail(),
		Projects:          page.Projects,
		NextProjectsToken: page.NextPageToken,
	}, nil
}

func loadAccount(ctx context.Context, accounts ports.AccountRepository, id domain.AccountID) (*domain.Account, error) {
	account, err := accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		return nil, domerrors.ErrAccountNotFound
	}
	return account, nil
}
