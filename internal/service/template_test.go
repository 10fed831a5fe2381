package service

import (
	"context"
	"testing"

	"appraise-go/internal/apperror"
	"appraise-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateNameVersionUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTemplateService(f.db, f.log)

	// Same name, new version: fine.
	v2, err := svc.Create(ctx, CreateTemplateInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "Leadership Review",
		Version:          "v2",
	})
	require.NoError(t, err)

	// Same (name, version) pair: conflict.
	_, err = svc.Create(ctx, CreateTemplateInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "Leadership Review",
		Version:          "v1",
	})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// Updating v2 onto the v1 pair: conflict.
	version := "v1"
	_, err = svc.Update(ctx, v2.ID, UpdateTemplateInput{Version: &version})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))
}

func TestTemplateDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	templates := NewTemplateService(f.db, f.log)
	questions := NewQuestionService(f.db, f.log)

	err := templates.Delete(ctx, f.template.ID)
	require.Equal(t, apperror.CodeDependency, apperror.GetCode(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.EqualValues(t, 1, appErr.Details["question_count"])

	require.NoError(t, questions.Delete(ctx, f.question.ID))

	// Still guarded while an instance uses the template.
	_, err = NewInstanceService(f.db, f.log).Create(ctx, CreateInstanceInput{
		UserID:     f.user.ID,
		PeriodID:   f.period.ID,
		TemplateID: f.template.ID,
	})
	require.NoError(t, err)

	err = templates.Delete(ctx, f.template.ID)
	assert.Equal(t, apperror.CodeDependency, apperror.GetCode(err))
}

func TestQuestionTextUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewQuestionService(f.db, f.log)

	_, err := svc.Create(ctx, CreateQuestionInput{
		TemplateID:   f.template.ID,
		CategoryID:   f.category.ID,
		QuestionText: "rate your listening skills",
	})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// Same text in another template is allowed.
	other, err := NewTemplateService(f.db, f.log).Create(ctx, CreateTemplateInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "Peer Review",
		Version:          "v1",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateQuestionInput{
		TemplateID:   other.ID,
		CategoryID:   f.category.ID,
		QuestionText: "Rate your listening skills",
	})
	assert.NoError(t, err)
}

func TestQuestionReorderReturnsFreshOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewQuestionService(f.db, f.log)

	second, err := svc.Create(ctx, CreateQuestionInput{
		TemplateID:   f.template.ID,
		CategoryID:   f.category.ID,
		QuestionText: "Rate your written communication",
		DisplayOrder: 2,
	})
	require.NoError(t, err)

	reordered, err := svc.Reorder(ctx, f.template.ID, []ReorderItem{
		{ID: second.ID, DisplayOrder: 1},
		{ID: f.question.ID, DisplayOrder: 2},
	})
	require.NoError(t, err)
	require.Len(t, reordered, 2)
	assert.Equal(t, []uint{second.ID, f.question.ID}, []uint{reordered[0].ID, reordered[1].ID})
}

func TestQuestionDeactivateExcludedFromCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	instance, err := NewInstanceService(f.db, f.log).Create(ctx, CreateInstanceInput{
		UserID:     f.user.ID,
		PeriodID:   f.period.ID,
		TemplateID: f.template.ID,
	})
	require.NoError(t, err)

	require.NoError(t, NewQuestionService(f.db, f.log).Deactivate(ctx, f.question.ID))

	result, err := NewResponseService(f.db, f.log).ValidateInstanceCompletion(ctx, instance.ID)
	require.NoError(t, err)
	assert.True(t, result.IsComplete)
	assert.Empty(t, result.MissingQuestions)

	var question models.AssessmentQuestion
	require.NoError(t, f.db.First(&question, f.question.ID).Error)
	assert.False(t, question.IsActive)
}
