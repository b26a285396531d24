package account

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// DeleteAccountInput names who deletes which account.
type DeleteAccountInput struct {
	Actor     domain.Actor
	AccountID domain.AccountID
}

// DeleteAccountResult reports how many projects changed owner.
type DeleteAccountResult struct {
	ProjectsReassigned int64
}

// DeleteAccount removes an account after handing its projects to the deleting admin.
type DeleteAccount struct {
	uow ports.UnitOfWork
}

// NewDeleteAccount builds the use case.
func NewDeleteAccount(uow ports.UnitOfWork) *DeleteAccount {
	return &DeleteAccount{uow: uow}
}

// Execute reassigns the target's projects to the actor and deletes the target in
// one transaction. Self-deletion is refused without touching anything.
func (uc *DeleteAccount) Execute(ctx context.Context, input DeleteAccountInput) (*DeleteAccountResult, error) {
	if !domain.CanDelete(input.Actor) {
		return nil, domerrors.ErrUnauthorized
	}
	var moved int64
	err := uc.uow.WithinTx(ctx, func(repos ports.Repositories) error {
		target, err := repos.Accounts.GetByID(ctx, input.AccountID)
		if err != nil {
			return err
		}
		if target == nil {
			return domerrors.ErrAccountNotFound
		}
		if target.ID == input.Actor.ID {
			return domerrors.ErrCannotDeleteSelf
		}
		// projects must point at the actor before the owner row goes away
		moved, err = repos.Projects.ReassignOwner(ctx, target.ID, input.Actor.ID)
		if err != nil {
			return err
		}
		return repos.Accounts.Delete(ctx, target.ID)
	})
	if err != nil {
		return nil, err
	}
	return &DeleteAccountResult{ProjectsReassigned: moved}, nil
}
