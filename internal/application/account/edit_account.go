package account

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

type EditAccountInput struct {
	Actor     domain.Actor
	AccountID domain.AccountID
}

// EditAccount returns the editable fields of an account. The policy check runs
// before the lookup so a denied caller learns nothing, not even whether the id exists.
type EditAccount struct {
	accounts ports.AccountRepository
}

func NewEditAccount(accounts ports.AccountRepository) *EditAccount {
	return &EditAccount{accounts: accounts}
}

func (uc *EditAccount) Execute(ctx context.Context, input EditAccountInput) (*domain.AccountDetail, error) {
	if !domain.CanEditOrView(input.Actor, input.AccountID) {
		return nil, domerrors.ErrUnauthorized
	}
	account, err := loadAccount(ctx, uc.accounts, input.AccountID)
	if err != nil {
		return nil, err
	}
	detail := account.Detail()
	return &detail, nil
}
