package service

import (
	"context"
	"testing"

	"appraise-go/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryNameUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCategoryService(f.db, f.log)

	second, err := svc.Create(ctx, CreateCategoryInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "Teamwork",
	})
	require.NoError(t, err)

	// Duplicate in the same type, case-insensitively
	_, err = svc.Create(ctx, CreateCategoryInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "communication",
	})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// Renaming onto a sibling's name is rejected too
	name := "Communication"
	_, err = svc.Update(ctx, second.ID, UpdateCategoryInput{Name: &name})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))

	// The same name under another type is fine
	other, err := NewAssessmentTypeService(f.db, f.log).Create(ctx, CreateTypeInput{Name: "Technical"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryInput{
		AssessmentTypeID: other.ID,
		Name:             "Communication",
	})
	assert.NoError(t, err)
}

func TestCategoryCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCategoryService(f.db, f.log)

	_, err := svc.Create(ctx, CreateCategoryInput{AssessmentTypeID: f.typ.ID, Name: " "})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreateCategoryInput{AssessmentTypeID: 9999, Name: "Orphaned"})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}

func TestCategoryDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	categories := NewCategoryService(f.db, f.log)
	questions := NewQuestionService(f.db, f.log)

	err := categories.Delete(ctx, f.category.ID)
	require.Equal(t, apperror.CodeDependency, apperror.GetCode(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.EqualValues(t, 1, appErr.Details["question_count"])

	// Once the question is gone the delete goes through.
	require.NoError(t, questions.Delete(ctx, f.question.ID))
	require.NoError(t, categories.Delete(ctx, f.category.ID))

	_, err = categories.GetByID(ctx, f.category.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}

func TestCategoryReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCategoryService(f.db, f.log)

	second, err := svc.Create(ctx, CreateCategoryInput{
		AssessmentTypeID: f.typ.ID,
		Name:             "Teamwork",
		DisplayOrder:     2,
	})
	require.NoError(t, err)

	reordered, err := svc.Reorder(ctx, f.typ.ID, []ReorderItem{
		{ID: f.category.ID, DisplayOrder: 2},
		{ID: second.ID, DisplayOrder: 1},
	})
	require.NoError(t, err)
	require.Len(t, reordered, 2)
	assert.Equal(t, second.ID, reordered[0].ID)
	assert.Equal(t, f.category.ID, reordered[1].ID)

	// An id from another type rolls the whole batch back.
	_, err = svc.Reorder(ctx, f.typ.ID, []ReorderItem{
		{ID: f.category.ID, DisplayOrder: 5},
		{ID: 9999, DisplayOrder: 6},
	})
	require.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))

	current, err := svc.GetByID(ctx, f.category.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.DisplayOrder)
}

func TestTypeDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	types := NewAssessmentTypeService(f.db, f.log)

	err := types.Delete(ctx, f.typ.ID)
	require.Equal(t, apperror.CodeDependency, apperror.GetCode(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.EqualValues(t, 1, appErr.Details["category_count"])
	assert.EqualValues(t, 1, appErr.Details["template_count"])
}

func TestTypeDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	types := NewAssessmentTypeService(f.db, f.log)

	require.NoError(t, types.Deactivate(ctx, f.typ.ID))

	active, err := types.GetAllActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deactivation is not deletion.
	got, err := types.GetByID(ctx, f.typ.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
