package service

import (
	"context"
	"testing"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.db, f.log)

	user, err := svc.Create(ctx, CreateUserInput{
		Email:     "  Bob@Example.COM ",
		Password:  "long-enough",
		FirstName: "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "long-enough", user.Password)
	assert.True(t, user.CheckPassword("long-enough"))
	assert.False(t, user.CheckPassword("wrong"))

	// Email uniqueness is case-insensitive.
	_, err = svc.Create(ctx, CreateUserInput{Email: "BOB@example.com", Password: "long-enough"})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateUserInput{Email: "not-an-email", Password: "long-enough"})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateUserInput{Email: "short@example.com", Password: "short"})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateUserInput{Email: "weird@example.com", Password: "long-enough", Role: "wizard"})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestUserLookupAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.db, f.log)

	byEmail, err := svc.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, byEmail.ID)

	firstName := "Alicia"
	updated, err := svc.Update(ctx, f.user.ID, UpdateUserInput{FirstName: &firstName})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)

	require.NoError(t, svc.Deactivate(ctx, f.user.ID))
	current, err := svc.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, current.IsActive)

	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(svc.Deactivate(ctx, "no-such-id")))
}

func TestUserRoleChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.db, f.log)

	admin := f.newUser(t, "admin@example.com", models.RoleAdmin)

	isManager, err := svc.IsManager(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, isManager) // the hierarchy is transitive

	isAdmin, err := svc.IsAdmin(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	isSuper, err := svc.IsSuperAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, isSuper)

	_, err = svc.IsManager(ctx, "no-such-id")
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}
