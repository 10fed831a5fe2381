package service

import (
	"context"
	"testing"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipSelfManagementRejected(t *testing.T) {
	f := newFixture(t)
	svc := NewRelationshipService(f.db, f.log)

	_, err := svc.Create(context.Background(), f.user.ID, f.user.ID, f.period.ID)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestRelationshipOneManagerPerPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewRelationshipService(f.db, f.log)

	carol := f.newUser(t, "carol@example.com", models.RoleManager)
	dave := f.newUser(t, "dave@example.com", models.RoleManager)

	_, err := svc.Create(ctx, carol.ID, f.user.ID, f.period.ID)
	require.NoError(t, err)

	// A second manager for the same subordinate and period is rejected.
	_, err = svc.Create(ctx, dave.ID, f.user.ID, f.period.ID)
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// A different period is a different relationship.
	q2, err := NewPeriodService(f.db, f.log).Create(ctx, CreatePeriodInput{
		Name:      "Q2 2024",
		StartDate: f.period.EndDate.AddDate(0, 0, 1),
		EndDate:   f.period.EndDate.AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dave.ID, f.user.ID, q2.ID)
	assert.NoError(t, err)
}

func TestRelationshipLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewRelationshipService(f.db, f.log)

	carol := f.newUser(t, "carol@example.com", models.RoleManager)
	bob := f.newUser(t, "bob@example.com", models.RoleUser)

	_, err := svc.Create(ctx, carol.ID, f.user.ID, f.period.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, carol.ID, bob.ID, f.period.ID)
	require.NoError(t, err)

	subordinates, err := svc.GetSubordinatesByManager(ctx, carol.ID, &f.period.ID)
	require.NoError(t, err)
	require.Len(t, subordinates, 2)
	// Ordered by email.
	assert.Equal(t, "alice@example.com", subordinates[0].Email)
	assert.Equal(t, "bob@example.com", subordinates[1].Email)

	manager, err := svc.GetManagerBySubordinate(ctx, f.user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, manager.ID)

	_, err = svc.GetManagerBySubordinate(ctx, carol.ID, nil)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	hierarchy, err := svc.GetRelationshipHierarchy(ctx, carol.ID, f.period.ID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, hierarchy.Manager.ID)
	assert.Len(t, hierarchy.Subordinates, 2)
}

func TestRelationshipDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewRelationshipService(f.db, f.log)

	carol := f.newUser(t, "carol@example.com", models.RoleManager)
	rel, err := svc.Create(ctx, carol.ID, f.user.ID, f.period.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rel.ID))
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(svc.Delete(ctx, rel.ID)))

	// The slot frees up once the relationship is gone.
	_, err = svc.Create(ctx, carol.ID, f.user.ID, f.period.ID)
	assert.NoError(t, err)
}
