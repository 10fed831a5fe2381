package service

import (
	"context"
	"testing"
	"time"

	"appraise-go/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodNameUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPeriodService(f.db, f.log)

	_, err := svc.Create(ctx, CreatePeriodInput{
		Name:      "q1 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, apperror.CodeConflict, apperror.GetCode(err))
}

func TestPeriodDateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPeriodService(f.db, f.log)

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreatePeriodInput{Name: "Backwards", StartDate: start, EndDate: start.AddDate(0, -1, 0)})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	_, err = svc.Create(ctx, CreatePeriodInput{Name: "Zero length", StartDate: start, EndDate: start})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	// Updating dates is validated against the merged result.
	badEnd := f.period.StartDate.AddDate(0, 0, -1)
	_, err = svc.Update(ctx, f.period.ID, UpdatePeriodInput{EndDate: &badEnd})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestPeriodActiveListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPeriodService(f.db, f.log)

	inactive := false
	_, err := svc.Update(ctx, f.period.ID, UpdatePeriodInput{IsActive: &inactive})
	require.NoError(t, err)

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
