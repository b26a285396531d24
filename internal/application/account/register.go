package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// RegistrationOutcome tells the caller what registration did.
type RegistrationOutcome string

const (
	// OutcomeCreated: a new unactivated account exists and an activation email was dispatched.
	OutcomeCreated RegistrationOutcome = "created"
	// OutcomeReissued: an unactivated account with this email already existed; its token was regenerated.
	OutcomeReissued RegistrationOutcome = "reissued"
	// OutcomeAlreadyRegistered: an activated account owns this email; the user should sign in.
	OutcomeAlreadyRegistered RegistrationOutcome = "already_registered"
	// OutcomeValidationFailed: nothing was stored; see FieldErrors.
	OutcomeValidationFailed RegistrationOutcome = "validation_failed"
)

// RegisterInput is a local signup request.
type RegisterInput struct {
	Email                string
	Name                 string
	Password             string
	PasswordConfirmation string
}

// RegisterResult describes the outcome of a signup.
type RegisterResult struct {
	Outcome     RegistrationOutcome
	Account     *domain.AccountDetail
	FieldErrors map[string]string
	// NotificationErr is set when the activation email could not be dispatched.
	NotificationErr error
}

// Registrar resolves new signups against existing accounts.
type Registrar struct {
	accounts   ports.AccountRepository
	hasher     ports.PasswordHasher
	activation *ActivationWorkflow
	now        func() time.Time
}

// NewRegistrar builds the use case.
func NewRegistrar(accounts ports.AccountRepository, hasher ports.PasswordHasher, activation *ActivationWorkflow) *Registrar {
	return &Registrar{accounts: accounts, hasher: hasher, activation: activation, now: time.Now}
}

// Execute registers a local account or reuses the pending one for the same email.
func (uc *Registrar) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := domain.NormalizeEmail(input.Email)
	existing, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}
	if existing != nil {
		return uc.resolveExisting(ctx, existing)
	}

	if err := validateAttrs(&registrationAttrs{
		Name:                 input.Name,
		Email:                email,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	}); err != nil {
		if ve, ok := domerrors.AsValidation(err); ok {
			return &RegisterResult{Outcome: OutcomeValidationFailed, FieldErrors: ve.Fields}, nil
		}
		return nil, err
	}

	digest, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	account := &domain.Account{
		ID:             domain.NewAccountID(id),
		Name:           input.Name,
		Email:          email,
		Provider:       domain.ProviderLocal,
		PasswordDigest: digest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		if !errors.Is(err, domerrors.ErrEmailTaken) {
			return nil, fmt.Errorf("create account: %w", err)
		}
		// lost a concurrent signup race; continue with the row that won
		winner, err := uc.accounts.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("lookup account by email: %w", err)
		}
		if winner == nil {
			return nil, fmt.Errorf("create account: %w", domerrors.ErrEmailTaken)
		}
		return uc.resolveExisting(ctx, winner)
	}

	issued, err := uc.activation.IssueActivationToken(ctx, account)
	if err != nil {
		return nil, err
	}
	detail := account.Detail()
	return &RegisterResult{Outcome: OutcomeCreated, Account: &detail, NotificationErr: issued.NotificationErr}, nil
}

func (uc *Registrar) resolveExisting(ctx context.Context, existing *domain.Account) (*RegisterResult, error) {
	if existing.Activated {
		return &RegisterResult{Outcome: OutcomeAlreadyRegistered}, nil
	}
	issued, err := uc.activation.RegenerateActivationToken(ctx, existing)
	if err != nil {
		return nil, err
	}
	detail := existing.Detail()
	return &RegisterResult{Outcome: OutcomeReissued, Account: &detail, NotificationErr: issued.NotificationErr}, nil
}
