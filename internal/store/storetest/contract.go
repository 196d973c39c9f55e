// Package storetest holds the behavioural contract every store.Store
// implementation must satisfy. Backends call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"void-backend/internal/models"
	"void-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

// Run executes the contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAccount assigns distinct ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateAccount(ctx, models.NewPasswordAccount("ann", "h1", "Q", "a1"))
		require.NoError(t, err)
		b, err := s.CreateAccount(ctx, models.NewPasswordAccount("bob", "h2", "Q", "a2"))
		require.NoError(t, err)

		assert.NotZero(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, models.IdentityPassword, a.Kind)
		require.NotNil(t, a.CredentialHash)
		assert.Equal(t, "h1", *a.CredentialHash)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("CreateAccount rejects duplicate username without writing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.CreateAccount(ctx, models.NewPasswordAccount("dup", "h1", "Q1", "a1"))
		require.NoError(t, err)

		_, err = s.CreateAccount(ctx, models.NewPasswordAccount("dup", "h2", "Q2", "a2"))
		assert.ErrorIs(t, err, store.ErrDuplicateUsername)

		got, err := s.GetAccountByUsername(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "h1", *got.CredentialHash)
		assert.Equal(t, "Q1", *got.SecurityQuestion)
	})

	t.Run("usernames are case-sensitive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateAccount(ctx, models.NewPasswordAccount("Ann", "h", "Q", "a"))
		require.NoError(t, err)
		_, err = s.CreateAccount(ctx, models.NewPasswordAccount("ann", "h", "Q", "a"))
		require.NoError(t, err)

		_, err = s.GetAccountByUsername(ctx, "ANN")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent creates with one username yield exactly one account", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.CreateAccount(ctx, models.NewPasswordAccount("race", fmt.Sprintf("h%d", i), "Q", "a"))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, store.ErrDuplicateUsername)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("federated account has no credential hash", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateAccount(ctx, models.NewFederatedAccount("ann@example.com", "google"))
		require.NoError(t, err)

		got, err := s.GetAccountByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.IsFederated())
		assert.Nil(t, got.CredentialHash)
		assert.Nil(t, got.AnswerHash)
		require.NotNil(t, got.Provider)
		assert.Equal(t, "google", *got.Provider)
		require.NotNil(t, got.SecurityQuestion)
		assert.Equal(t, models.FederatedRecoveryQuestion, *got.SecurityQuestion)
	})

	t.Run("lookups of missing accounts return ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetAccountByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetAccountByID(ctx, 424242)
		assert.ErrorIs(t, err, store.ErrNotFound)
		err = s.UpdateCredentialHash(ctx, 424242, "h")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("UpdateCredentialHash replaces the hash only", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateAccount(ctx, models.NewPasswordAccount("ann", "old", "Q", "a"))
		require.NoError(t, err)
		require.NoError(t, s.UpdateCredentialHash(ctx, a.ID, "new"))

		got, err := s.GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", *got.CredentialHash)
		assert.Equal(t, "a", *got.AnswerHash)
		assert.Equal(t, "ann", got.Username)
	})

	t.Run("messages are listed in insertion order per account", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateAccount(ctx, models.NewPasswordAccount("a", "h", "Q", "x"))
		require.NoError(t, err)
		b, err := s.CreateAccount(ctx, models.NewPasswordAccount("b", "h", "Q", "x"))
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := s.AppendMessage(ctx, a.ID, models.RoleUser, fmt.Sprintf("a%d", i))
			require.NoError(t, err)
			_, err = s.AppendMessage(ctx, b.ID, models.RoleAssistant, fmt.Sprintf("b%d", i))
			require.NoError(t, err)
		}

		listA, err := s.ListMessagesByAccount(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, listA, 5)
		for i, m := range listA {
			assert.Equal(t, a.ID, m.AccountID)
			assert.Equal(t, fmt.Sprintf("a%d", i), m.Content)
			assert.Equal(t, models.RoleUser, m.Role)
			if i > 0 {
				assert.False(t, m.CreatedAt.Before(listA[i-1].CreatedAt))
			}
		}

		listB, err := s.ListMessagesByAccount(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, listB, 5)
		for _, m := range listB {
			assert.Equal(t, b.ID, m.AccountID)
		}
	})

	t.Run("empty transcript is an empty slice", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateAccount(ctx, models.NewPasswordAccount("quiet", "h", "Q", "x"))
		require.NoError(t, err)

		msgs, err := s.ListMessagesByAccount(ctx, a.ID)
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})
}
