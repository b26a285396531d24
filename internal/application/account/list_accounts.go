package account

import (
	"context"
	"fmt"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// Page sizes for listings.
const (
	DefaultPageSize = 30
	MaxPageSize     = 100
)

// ClampPageSize applies the default and the upper bound.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

type ListAccountsInput struct {
	Actor     domain.Actor
	PageSize  int
	PageToken string
}

type ListAccountsResult struct {
	Accounts      []domain.AccountSummary
	NextPageToken string
}

// ListAccounts pages through every account. Admins only.
type ListAccounts struct {
	accounts ports.AccountRepository
}

func NewListAccounts(accounts ports.AccountRepository) *ListAccounts {
	return &ListAccounts{accounts: accounts}
}

func (uc *ListAccounts) Execute(ctx context.Context, input ListAccountsInput) (*ListAccountsResult, error) {
	if !domain.CanViewList(input.Actor) {
		return nil, domerrors.ErrUnauthorized
	}
	page, err := uc.accounts.List(ctx, ClampPageSize(input.PageSize), input.PageToken)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	items := make([]domain.AccountSummary, 0, len(page.Accounts))
	for _, a := range page.Accounts {
		items = append(items, a.Summary())
	}
	return &ListAccountsResult{Accounts: items, NextPageToken: page.NextPageToken}, nil
}
