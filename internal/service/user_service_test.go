package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := h.userSvc.Register(ctx, service.CreateUserRequest{Username: "alice", Password: "secret1", Role: model.RoleAdmin}, "system")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "system", user.CreatedBy)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.userSvc.Register(ctx, service.CreateUserRequest{Username: "alice", Password: "secret1", Role: model.RoleAdmin}, "system")
	require.NoError(t, err)

	_, err = h.userSvc.Register(ctx, service.CreateUserRequest{Username: "alice", Password: "other-pass", Role: model.RoleEmployee}, "system")
	var dup *service.DuplicateUsernameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "alice", dup.Username)
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)

	user, err := h.auth.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	all, err := h.userSvc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   service.CreateUserRequest
		field string
	}{
		{"unknown role", service.CreateUserRequest{Username: "bob", Password: "secret1", Role: "manager"}, "role"},
		{"missing role", service.CreateUserRequest{Username: "bob", Password: "secret1"}, "role"},
		{"short username", service.CreateUserRequest{Username: "bo", Password: "secret1", Role: model.RoleEmployee}, "username"},
		{"short password", service.CreateUserRequest{Username: "bob", Password: "123", Role: model.RoleEmployee}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.userSvc.Register(ctx, tt.req, "system")
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}
}

func TestGetUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, err := h.userSvc.Register(ctx, service.CreateUserRequest{Username: "carol", Password: "secret1", Role: model.RoleEmployee}, "system")
	require.NoError(t, err)

	got, err := h.userSvc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, model.RoleEmployee.Privileges(), got.Privileges)

	_, err = h.userSvc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
