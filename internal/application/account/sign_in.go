package account

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

type SignInInput struct {
	Email    string
	Password string
}

// SignInResult carries the access token the caller presents as its actor.
type SignInResult struct {
	AccessToken string
	ExpiresIn   int64
	Account     domain.AccountDetail
}

// SignIn exchanges local credentials for an access token.
type SignIn struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	issuer   ports.TokenIssuer
	ttl      time.Duration
}

func NewSignIn(accounts ports.AccountRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, ttl time.Duration) *SignIn {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignIn{accounts: accounts, hasher: hasher, issuer: issuer, ttl: ttl}
}

func (uc *SignIn) Execute(ctx context.Context, input SignInInput) (*SignInResult, error) {
	account, err := uc.accounts.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}
	if account == nil || account.IsFederated() || !uc.hasher.Verify(input.Password, account.PasswordDigest) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if !account.Activated {
		return nil, domerrors.ErrNotActivated
	}
	return issueSession(uc.issuer, account, uc.ttl)
}

func issueSession(issuer ports.TokenIssuer, account *domain.Account, ttl time.Duration) (*SignInResult, error) {
	token, err := issuer.IssueAccessToken(account.ID.String(), ttl)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &SignInResult{
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
		Account:     account.Detail(),
	}, nil
}
