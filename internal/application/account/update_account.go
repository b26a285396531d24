package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// UpdateAttrs are the fields a caller may change. Nil pointers and an empty
// password leave the stored value alone.
type UpdateAttrs struct {
	Name                 *string
	Email                *string
	Password             string
	PasswordConfirmation string
	Admin                *bool
}

type UpdateAccountInput struct {
	Actor     domain.Actor
	AccountID domain.AccountID
	Attrs     UpdateAttrs
}

// UpdateAccount applies a profile edit by the owner or an admin.
type UpdateAccount struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	now      func() time.Time
}

func NewUpdateAccount(accounts ports.AccountRepository, hasher ports.PasswordHasher) *UpdateAccount {
	return &UpdateAccount{accounts: accounts, hasher: hasher, now: time.Now}
}

// Execute returns *domerrors.ValidationError for bad input.
func (uc *UpdateAccount) Execute(ctx context.Context, input UpdateAccountInput) (*domain.AccountDetail, error) {
	if !domain.CanEditOrView(input.Actor, input.AccountID) {
		return nil, domerrors.ErrUnauthorized
	}
	account, err := loadAccount(ctx, uc.accounts, input.AccountID)
	if err != nil {
		return nil, err
	}

	attrs := input.Attrs
	if attrs.Name != nil {
		account.Name = *attrs.Name
	}
	if attrs.Email != nil {
		account.Email = domain.NormalizeEmail(*attrs.Email)
	}
	if err := validateAttrs(&profileAttrs{Name: account.Name, Email: account.Email}); err != nil {
		return nil, err
	}
	if attrs.Password != "" || attrs.PasswordConfirmation != "" {
		if err := validateAttrs(&passwordAttrs{
			Password:             attrs.Password,
			PasswordConfirmation: attrs.PasswordConfirmation,
		}); err != nil {
			return nil, err
		}
		digest, err := uc.hasher.Hash(attrs.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordDigest = digest
	}
	if attrs.Admin != nil && input.Actor.Admin && input.Actor.ID != account.ID {
		account.Admin = *attrs.Admin
	}
	account.UpdatedAt = uc.now()

	if err := uc.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, domerrors.ErrEmailTaken) {
			return nil, domerrors.NewValidationError("email", "has already been taken")
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	detail := account.Detail()
	return &detail, nil
}
