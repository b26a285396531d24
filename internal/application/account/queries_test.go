package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

func TestListAccountsRequiresAdmin(t *testing.T) {
	s := newStore()
	user := s.addAccount(domain.Account{Email: "u@example.com"})
	uc := NewListAccounts(s)

	_, err := uc.Execute(context.Background(), ListAccountsInput{Actor: domain.Anonymous})
	assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
	_, err = uc.Execute(context.Background(), ListAccountsInput{Actor: domain.ActorFor(user)})
	assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
}

func TestListAccountsPages(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "admin@example.com", Admin: true})
	for i := 0; i < 4; i++ {
		s.addAccount(domain.Account{Email: string(rune('a'+i)) + "@example.com"})
	}
	uc := NewListAccounts(s)

	seen := map[domain.AccountID]bool{}
	token := ""
	pages := 0
	for {
		res, err := uc.Execute(context.Background(), ListAccountsInput{Actor: domain.ActorFor(admin), PageSize: 2, PageToken: token})
		require.NoError(t, err)
		pages++
		for _, a := range res.Accounts {
			assert.False(t, seen[a.ID], "account listed twice")
			seen[a.ID] = true
		}
		if res.NextPageToken == "" {
			break
		}
		token = res.NextPageToken
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, 10, ClampPageSize(10))
	assert.Equal(t, MaxPageSize, ClampPageSize(10_000))
}

func TestGetAccount(t *testing.T) {
	s := newStore()
	owner := s.addAccount(domain.Account{Email: "o@example.com", PasswordDigest: "hashed:x"})
	other := s.addAccount(domain.Account{Email: "x@example.com"})
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})
	s.addProject(owner.ID, "P1")
	s.addProject(owner.ID, "P2")
	uc := NewGetAccount(s, projectRepo{s})
	ctx := context.Background()

	res, err := uc.Execute(ctx, GetAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "o@example.com", res.Account.Email)
	assert.Len(t, res.Projects, 2)

	_, err = uc.Execute(ctx, GetAccountInput{Actor: domain.ActorFor(admin), AccountID: owner.ID})
	assert.NoError(t, err)

	_, err = uc.Execute(ctx, GetAccountInput{Actor: domain.ActorFor(other), AccountID: owner.ID})
	assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
	_, err = uc.Execute(ctx, GetAccountInput{Actor: domain.Anonymous, AccountID: owner.ID})
	assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
}

func TestEditAccount(t *testing.T) {
	s := newStore()
	owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Owner"})
	other := s.addAccount(domain.Account{Email: "x@example.com"})
	uc := NewEditAccount(s)

	detail, err := uc.Execute(context.Background(), EditAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "Owner", detail.Name)

	_, err = uc.Execute(context.Background(), EditAccountInput{Actor: domain.ActorFor(other), AccountID: owner.ID})
	assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
}

func strPtr(s string) *string { return &s }

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("owner renames and changes password", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old", PasswordDigest: "hashed:old"})
		uc := NewUpdateAccount(s, fakeHasher{})

		detail, err := uc.Execute(ctx, UpdateAccountInput{
			Actor:     domain.ActorFor(owner),
			AccountID: owner.ID,
			Attrs:     UpdateAttrs{Name: strPtr("New"), Password: "newpass1", PasswordConfirmation: "newpass1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "New", detail.Name)
		stored, _ := s.account(owner.ID)
		assert.Equal(t, "hashed:newpass1", stored.PasswordDigest)
	})

	t.Run("blank password keeps digest", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old", PasswordDigest: "hashed:old"})
		uc := NewUpdateAccount(s, fakeHasher{})

		_, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID, Attrs: UpdateAttrs{Name: strPtr("New")}})
		require.NoError(t, err)
		stored, _ := s.account(owner.ID)
		assert.Equal(t, "hashed:old", stored.PasswordDigest)
	})

	t.Run("validation failure", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old"})
		uc := NewUpdateAccount(s, fakeHasher{})

		_, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID, Attrs: UpdateAttrs{Email: strPtr("nope")}})
		ve, ok := domerrors.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "is invalid", ve.Fields["email"])
		stored, _ := s.account(owner.ID)
		assert.Equal(t, "o@example.com", stored.Email)
	})

	t.Run("taken email", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old"})
		s.addAccount(domain.Account{Email: "taken@example.com"})
		uc := NewUpdateAccount(s, fakeHasher{})

		_, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID, Attrs: UpdateAttrs{Email: strPtr("Taken@example.com")}})
		ve, ok := domerrors.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "email")
	})

	t.Run("non-admin cannot grant admin", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old"})
		uc := NewUpdateAccount(s, fakeHasher{})
		yes := true

		detail, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(owner), AccountID: owner.ID, Attrs: UpdateAttrs{Admin: &yes}})
		require.NoError(t, err)
		assert.False(t, detail.Admin)
	})

	t.Run("admin edits another account", func(t *testing.T) {
		s := newStore()
		admin := s.addAccount(domain.Account{Email: "a@example.com", Name: "Admin", Admin: true})
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old"})
		uc := NewUpdateAccount(s, fakeHasher{})
		yes := true

		detail, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(admin), AccountID: owner.ID, Attrs: UpdateAttrs{Admin: &yes}})
		require.NoError(t, err)
		assert.True(t, detail.Admin)
	})

	t.Run("other user denied", func(t *testing.T) {
		s := newStore()
		owner := s.addAccount(domain.Account{Email: "o@example.com", Name: "Old"})
		other := s.addAccount(domain.Account{Email: "x@example.com", Name: "X"})
		uc := NewUpdateAccount(s, fakeHasher{})

		_, err := uc.Execute(ctx, UpdateAccountInput{Actor: domain.ActorFor(other), AccountID: owner.ID, Attrs: UpdateAttrs{Name: strPtr("pwned")}})
		assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
		stored, _ := s.account(owner.ID)
		assert.Equal(t, "Old", stored.Name)
	})
}
