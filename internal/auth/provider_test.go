package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/repository"
)

func TestTokenProviderAuthenticate(t *testing.T) {
	p := NewTokenProvider("tok-a:alice, tok-b:bob, malformed, :nouser, notok:")

	user, ok := p.Authenticate("tok-a")
	require.True(t, ok)
	assert.Equal(t, UserID("alice"), user)

	_, ok = p.Authenticate("unknown")
	assert.False(t, ok)
	_, ok = p.Authenticate("malformed")
	assert.False(t, ok)
}

func TestCurrentUserFromContext(t *testing.T) {
	p := NewTokenProvider("")

	_, ok := p.CurrentUser(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), "alice")
	user, ok := p.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, UserID("alice"), user)
}

func TestRegistryScopesPerUser(t *testing.T) {
	p := NewTokenProvider("tok-a:alice,tok-b:bob")
	reg := NewRegistry(p, nil)

	d, err := core.ParseDate("2024-01-01")
	require.NoError(t, err)
	_, err = reg.Get("alice").AddTransaction(core.TransactionDraft{
		Date: d, Type: core.TypeIncome, Amount: core.Money{Cents: 100}, Description: "x",
	})
	require.NoError(t, err)

	assert.Len(t, reg.Get("alice").Transactions(), 1)
	assert.Empty(t, reg.Get("bob").Transactions(), "no cross-user mixing")
}

func TestRegistryDropsRepoOnSignOut(t *testing.T) {
	p := NewTokenProvider("tok-a:alice")
	reg := NewRegistry(p, nil)

	d, err := core.ParseDate("2024-01-01")
	require.NoError(t, err)
	_, err = reg.Get("alice").AddTransaction(core.TransactionDraft{
		Date: d, Type: core.TypeIncome, Amount: core.Money{Cents: 100}, Description: "x",
	})
	require.NoError(t, err)

	p.Revoke("tok-a")
	assert.Empty(t, reg.Get("alice").Transactions(), "signed-out user starts empty")
}

func TestRegistryInitRunsOncePerUser(t *testing.T) {
	var inits []UserID
	reg := NewRegistry(nil, func(user UserID, _ *repository.Repository) {
		inits = append(inits, user)
	})

	reg.Get("alice")
	reg.Get("alice")
	reg.Get("bob")

	assert.Equal(t, []UserID{"alice", "bob"}, inits)
}
