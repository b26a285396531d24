package account

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// ActivationToken is a freshly issued token pair. Token is the plaintext that
// goes into the emailed link; only Digest is stored.
type ActivationToken struct {
	Token  string
	Digest string
	// NotificationErr is set when the activation email could not be scheduled.
	// The stored digest stays in place either way.
	NotificationErr error
}

// ActivationWorkflow moves local accounts from unactivated to activated.
type ActivationWorkflow struct {
	accounts ports.AccountRepository
	digester ports.TokenDigester
	notifier ports.ActivationNotifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewActivationWorkflow builds the workflow.
func NewActivationWorkflow(accounts ports.AccountRepository, digester ports.TokenDigester, notifier ports.ActivationNotifier, log zerolog.Logger) *ActivationWorkflow {
	return &ActivationWorkflow{
		accounts: accounts,
		digester: digester,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// IssueActivationToken creates a token pair for account, stores the digest and
// dispatches the activation email.
func (w *ActivationWorkflow) IssueActivationToken(ctx context.Context, account *domain.Account) (*ActivationToken, error) {
	token, err := w.digester.NewToken()
	if err != nil {
		return nil, fmt.Errorf("generate activation token: %w", err)
	}
	digest := w.digester.Digest(token)
	if err := w.accounts.SetActivationDigest(ctx, account.ID, digest); err != nil {
		return nil, fmt.Errorf("store activation digest: %w", err)
	}
	account.ActivationDigest = digest

	result := &ActivationToken{Token: token, Digest: digest}
	if err := w.notifier.SendActivationEmail(ctx, account, token); err != nil {
		w.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("activation email not dispatched")
		result.NotificationErr = err
	}
	return result, nil
}

// RegenerateActivationToken replaces the stored digest of an unactivated account.
// Links carrying the previous token stop working.
func (w *ActivationWorkflow) RegenerateActivationToken(ctx context.Context, account *domain.Account) (*ActivationToken, error) {
	if account.Activated {
		return nil, domerrors.ErrAlreadyActivated
	}
	return w.IssueActivationToken(ctx, account)
}

// ActivateInput identifies the account and carries the token from the link.
type ActivateInput struct {
	AccountID domain.AccountID
	Token     string
}

// ActivateResult is the activated account.
type ActivateResult struct {
	Account domain.AccountDetail
}

// Activate checks the presented token against the stored digest and, on match,
// activates the account and clears the digest so the link cannot be replayed.
func (w *ActivationWorkflow) Activate(ctx context.Context, input ActivateInput) (*ActivateResult, error) {
	account, err := w.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		return nil, domerrors.ErrInvalidToken
	}
	if account.Activated {
		return nil, domerrors.ErrAlreadyActivated
	}
	if account.ActivationDigest == "" || input.Token == "" || !w.digester.Matches(input.Token, account.ActivationDigest) {
		return nil, domerrors.ErrInvalidToken
	}
	ok, err := w.accounts.MarkActivated(ctx, account.ID, account.ActivationDigest)
	if err != nil {
		return nil, fmt.Errorf("activate account: %w", err)
	}
	if !ok {
		// digest changed underneath us: regenerated or already used
		return nil, domerrors.ErrInvalidToken
	}
	now := w.now()
	account.Activated = true
	account.ActivatedAt = &now
	account.ActivationDigest = ""
	return &ActivateResult{Account: account.Detail()}, nil
}
