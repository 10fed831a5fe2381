package service

import (
	"context"
	"testing"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceTripleUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewInstanceService(f.db, f.log)

	base := CreateInstanceInput{
		UserID:     f.user.ID,
		PeriodID:   f.period.ID,
		TemplateID: f.template.ID,
	}
	first, err := svc.Create(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, first.Status)

	_, err = svc.Create(ctx, base)
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// Varying any one of the three keys makes a new instance valid.
	bob := f.newUser(t, "bob@example.com", models.RoleUser)
	otherUser := base
	otherUser.UserID = bob.ID
	_, err = svc.Create(ctx, otherUser)
	assert.NoError(t, err)

	q2, err := NewPeriodService(f.db, f.log).Create(ctx, CreatePeriodInput{
		Name:      "Q2 2024",
		StartDate: f.period.EndDate.AddDate(0, 0, 1),
		EndDate:   f.period.EndDate.AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	otherPeriod := base
	otherPeriod.PeriodID = q2.ID
	_, err = svc.Create(ctx, otherPeriod)
	assert.NoError(t, err)
}

func TestInstanceCreateValidatesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewInstanceService(f.db, f.log)

	_, err := svc.Create(ctx, CreateInstanceInput{
		UserID: "no-such-user", PeriodID: f.period.ID, TemplateID: f.template.ID,
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: 9999, TemplateID: f.template.ID,
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: f.period.ID, TemplateID: 9999,
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: f.period.ID, TemplateID: f.template.ID,
		Status: "paused",
	})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestInstanceStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewInstanceService(f.db, f.log)

	instance, err := svc.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: f.period.ID, TemplateID: f.template.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, instance.StartedAt)
	assert.Nil(t, instance.CompletedAt)

	instance, err = svc.UpdateStatus(ctx, instance.ID, models.StatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, instance.StartedAt)
	startedAt := *instance.StartedAt

	// Re-setting the same status is a no-op and keeps the timestamp.
	instance, err = svc.UpdateStatus(ctx, instance.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, startedAt, *instance.StartedAt)

	instance, err = svc.UpdateStatus(ctx, instance.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, instance.CompletedAt)

	// Backward transitions are rejected.
	_, err = svc.UpdateStatus(ctx, instance.ID, models.StatusInProgress)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	instance, err = svc.UpdateStatus(ctx, instance.ID, models.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, instance.Status)

	_, err = svc.UpdateStatus(ctx, instance.ID, models.StatusPending)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestInstanceDeleteCascadesResponses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	instances := NewInstanceService(f.db, f.log)
	responses := NewResponseService(f.db, f.log)

	instance, err := instances.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: f.period.ID, TemplateID: f.template.ID,
	})
	require.NoError(t, err)

	_, err = responses.Create(ctx, instance.ID, f.question.ID, 5)
	require.NoError(t, err)

	require.NoError(t, instances.Delete(ctx, instance.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.AssessmentResponse{}).
		Where("instance_id = ?", instance.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(instances.Delete(ctx, instance.ID)))
}

func TestInstanceGetByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewInstanceService(f.db, f.log)

	_, err := svc.Create(ctx, CreateInstanceInput{
		UserID: f.user.ID, PeriodID: f.period.ID, TemplateID: f.template.ID,
	})
	require.NoError(t, err)

	list, err := svc.GetByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetByUser(ctx, "no-such-user")
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}
