package account

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

func ownedBy(s *store, id domain.AccountID) int {
	n := 0
	for _, p := range s.projects {
		if p.OwnerID == id {
			n++
		}
	}
	return n
}

func TestDeleteAccountReassignsProjects(t *testing.T) {
	for _, count := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d projects", count), func(t *testing.T) {
			s := newStore()
			admin := s.addAccount(domain.Account{Email: "admin@example.com", Admin: true, Activated: true})
			user := s.addAccount(domain.Account{Email: "user@example.com", Activated: true})
			for i := 0; i < count; i++ {
				s.addProject(user.ID, fmt.Sprintf("p%d", i))
			}
			s.addProject(admin.ID, "admin-own")

			res, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{
				Actor:     domain.ActorFor(admin),
				AccountID: user.ID,
			})
			require.NoError(t, err)
			assert.EqualValues(t, count, res.ProjectsReassigned)

			_, exists := s.account(user.ID)
			assert.False(t, exists)
			assert.Zero(t, ownedBy(s, user.ID))
			assert.Equal(t, count+1, ownedBy(s, admin.ID))
		})
	}
}

func TestDeleteAccountScenario(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})
	user := s.addAccount(domain.Account{Email: "u@example.com"})
	p1 := s.addProject(user.ID, "P1")
	p2 := s.addProject(user.ID, "P2")

	_, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{Actor: domain.ActorFor(admin), AccountID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, s.projects[p1].OwnerID)
	assert.Equal(t, admin.ID, s.projects[p2].OwnerID)

	_, err = NewGetAccount(s, projectRepo{s}).Execute(context.Background(), GetAccountInput{Actor: domain.ActorFor(admin), AccountID: user.ID})
	assert.ErrorIs(t, err, domerrors.ErrAccountNotFound)
}

func TestDeleteAccountRefusesSelf(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})
	p := s.addProject(admin.ID, "mine")

	_, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{Actor: domain.ActorFor(admin), AccountID: admin.ID})
	assert.ErrorIs(t, err, domerrors.ErrCannotDeleteSelf)
	assert.Zero(t, s.writes)
	assert.Equal(t, admin.ID, s.projects[p].OwnerID)
	_, exists := s.account(admin.ID)
	assert.True(t, exists)
}

func TestDeleteAccountUnauthorized(t *testing.T) {
	s := newStore()
	user := s.addAccount(domain.Account{Email: "u@example.com"})
	other := s.addAccount(domain.Account{Email: "o@example.com"})
	p := s.addProject(user.ID, "P")

	for name, actor := range map[string]domain.Actor{
		"anonymous": domain.Anonymous,
		"non-admin": domain.ActorFor(other),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{Actor: actor, AccountID: user.ID})
			assert.ErrorIs(t, err, domerrors.ErrUnauthorized)
			assert.Zero(t, s.writes)
			assert.Equal(t, user.ID, s.projects[p].OwnerID)
		})
	}
}

func TestDeleteAccountNotFound(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})

	_, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{
		Actor:     domain.ActorFor(admin),
		AccountID: domain.NewAccountID(uuid.Must(uuid.NewV7())),
	})
	assert.ErrorIs(t, err, domerrors.ErrAccountNotFound)
}

func TestDeleteAccountFailedDestroyRollsBackReassignment(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})
	user := s.addAccount(domain.Account{Email: "u@example.com"})
	p := s.addProject(user.ID, "P")
	s.failOn = "delete"

	_, err := NewDeleteAccount(s).Execute(context.Background(), DeleteAccountInput{Actor: domain.ActorFor(admin), AccountID: user.ID})
	require.Error(t, err)
	assert.Equal(t, user.ID, s.projects[p].OwnerID, "reassignment must not survive a failed delete")
	_, exists := s.account(user.ID)
	assert.True(t, exists)
}

func TestDeleteAccountCancelledContextRollsBack(t *testing.T) {
	s := newStore()
	admin := s.addAccount(domain.Account{Email: "a@example.com", Admin: true})
	user := s.addAccount(domain.Account{Email: "u@example.com"})
	p := s.addProject(user.ID, "P")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDeleteAccount(s).Execute(ctx, DeleteAccountInput{Actor: domain.ActorFor(admin), AccountID: user.ID})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, user.ID, s.projects[p].OwnerID)
	_, exists := s.account(user.ID)
	assert.True(t, exists)
}
