package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

func newRegistrar(s *store, n *mockNotifier) *Registrar {
	w, _ := newWorkflow(s, n)
	return NewRegistrar(s, fakeHasher{}, w)
}

func validSignup(email string) RegisterInput {
	return RegisterInput{
		Email:                email,
		Name:                 "Ada Lovelace",
		Password:             "engine42",
		PasswordConfirmation: "engine42",
	}
}

func TestRegisterCreatesUnactivatedLocalAccount(t *testing.T) {
	s := newStore()
	n := &mockNotifier{}
	n.On("SendActivationEmail", mock.Anything, "ada@example.com", "token-1").Return(nil).Once()
	uc := newRegistrar(s, n)

	res, err := uc.Execute(context.Background(), validSignup("  Ada@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.NotNil(t, res.Account)

	stored, ok := s.account(res.Account.ID)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, domain.ProviderLocal, stored.Provider)
	assert.False(t, stored.Activated)
	assert.Equal(t, "hashed:engine42", stored.PasswordDigest)
	assert.Equal(t, "digest:token-1", stored.ActivationDigest)
	n.AssertExpectations(t)
}

func TestRegisterExistingActivatedAccount(t *testing.T) {
	s := newStore()
	s.addAccount(domain.Account{Email: "ada@example.com", Activated: true})
	n := &mockNotifier{}
	uc := newRegistrar(s, n)

	res, err := uc.Execute(context.Background(), validSignup("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyRegistered, res.Outcome)
	assert.Equal(t, 1, s.countByEmail("ada@example.com"))
	assert.Zero(t, s.writes)
	n.AssertNotCalled(t, "SendActivationEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterExistingUnactivatedAccountReissues(t *testing.T) {
	s := newStore()
	acc := s.addAccount(domain.Account{Email: "ada@example.com", ActivationDigest: "digest:old"})
	n := &mockNotifier{}
	n.On("SendActivationEmail", mock.Anything, "ada@example.com", mock.Anything).Return(nil).Once()
	uc := newRegistrar(s, n)

	res, err := uc.Execute(context.Background(), validSignup("ADA@example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeReissued, res.Outcome)
	assert.Equal(t, acc.ID, res.Account.ID)
	assert.Equal(t, 1, s.countByEmail("ada@example.com"))

	stored, _ := s.account(acc.ID)
	assert.NotEqual(t, "digest:old", stored.ActivationDigest)
	n.AssertExpectations(t)
}

func TestRegisterValidationFailure(t *testing.T) {
	cases := map[string]struct {
		input RegisterInput
		field string
	}{
		"malformed email": {RegisterInput{Email: "not-an-email", Name: "A", Password: "engine42", PasswordConfirmation: "engine42"}, "email"},
		"blank name":      {RegisterInput{Email: "a@example.com", Password: "engine42", PasswordConfirmation: "engine42"}, "name"},
		"blank password":  {RegisterInput{Email: "a@example.com", Name: "A"}, "password"},
		"short password":  {RegisterInput{Email: "a@example.com", Name: "A", Password: "abc", PasswordConfirmation: "abc"}, "password"},
		"mismatch":        {RegisterInput{Email: "a@example.com", Name: "A", Password: "engine42", PasswordConfirmation: "engine43"}, "password_confirmation"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			n := &mockNotifier{}
			uc := newRegistrar(s, n)

			res, err := uc.Execute(context.Background(), tc.input)
			require.NoError(t, err)
			assert.Equal(t, OutcomeValidationFailed, res.Outcome)
			assert.Contains(t, res.FieldErrors, tc.field)
			assert.Empty(t, s.accounts)
			n.AssertNotCalled(t, "SendActivationEmail", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterUniqueViolationRaceBecomesReissue(t *testing.T) {
	s := newStore()
	n := &mockNotifier{}
	n.On("SendActivationEmail", mock.Anything, "ada@example.com", mock.Anything).Return(nil).Once()
	uc := newRegistrar(s, n)

	// the lookup misses, then a concurrent signup commits before our insert
	racer := domain.Account{Email: "ada@example.com", ActivationDigest: "digest:racer"}
	uc.accounts = &raceRepo{store: s, onFirstMiss: func() { s.addAccount(racer) }}

	res, err := uc.Execute(context.Background(), validSignup("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeReissued, res.Outcome)
	assert.Equal(t, 1, s.countByEmail("ada@example.com"))
	n.AssertExpectations(t)
}

// raceRepo inserts a competing row right after the first email lookup.
type raceRepo struct {
	*store
	onFirstMiss func()
	done        bool
}

func (r *raceRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	a, err := r.store.GetByEmail(ctx, email)
	if a == nil && !r.done {
		r.done = true
		r.onFirstMiss()
	}
	return a, err
}

func TestRegisterNotificationFailureStillCreates(t *testing.T) {
	s := newStore()
	n := &mockNotifier{}
	n.On("SendActivationEmail", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	uc := newRegistrar(s, n)

	res, err := uc.Execute(context.Background(), validSignup("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.ErrorIs(t, res.NotificationErr, assert.AnError)
	assert.Equal(t, 1, s.countByEmail("ada@example.com"))
}
