package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"
)

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))

	alice := &model.User{Username: "alice", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, &model.User{Username: "bob", PasswordHash: "y", Role: model.RoleEmployee}))

	err := repo.Create(ctx, &model.User{Username: "alice", PasswordHash: "z", Role: model.RoleEmployee})
	assert.Error(t, err, "username is unique")

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "x", got.PasswordHash)

	require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash", "v2"))
	got, err = repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Equal(t, "v2", got.TokenVersion)

	require.NoError(t, repo.UpdateTokenVersion(ctx, alice.ID, "v3"))
	got, err = repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", got.TokenVersion)

	admins, err := repo.CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Username)

	_, err = repo.FindByUsername(ctx, "carol")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
