package repository

import (
	"context"
	"testing"
	"time"

	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnrollmentRepository(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, db, testutil.CourseDocument("rust", "rust-intro", 3))
	user := testutil.SeedUser(t, db, "learner@example.com", model.Student)
	repo := NewEnrollmentRepository(db)

	_, err := repo.Find(ctx, user.ID, course.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	e := &model.Enrollment{UserID: user.ID, CourseID: course.ID}
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)

	dup := &model.Enrollment{UserID: user.ID, CourseID: course.ID}
	assert.ErrorIs(t, repo.Create(ctx, dup), gorm.ErrDuplicatedKey)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var seen int
	updated, err := repo.RecordCompletion(ctx, e.ID, "rust-c0", t0, func(fresh *model.Enrollment) CompletionUpdate {
		seen = len(fresh.CompletedContents)
		return CompletionUpdate{PercentComplete: 33.3}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen, "recompute sees the new row")
	assert.Equal(t, 1, updated.Revision)
	assert.InDelta(t, 33.3, updated.PercentComplete, 1e-9)
	assert.Nil(t, updated.DateCompleted)

	_, err = repo.RecordCompletion(ctx, e.ID, "rust-c0", t0, func(*model.Enrollment) CompletionUpdate {
		return CompletionUpdate{}
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	done := t0.Add(time.Hour)
	updated, err = repo.RecordCompletion(ctx, e.ID, "rust-c1", done, func(*model.Enrollment) CompletionUpdate {
		return CompletionUpdate{PercentComplete: 100, DateCompleted: &done}
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DateCompleted)

	got, err := repo.FindByCourseSlug(ctx, user.ID, "rust-intro")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Revision)
	assert.InDelta(t, 100.0, got.PercentComplete, 1e-9)
	require.Len(t, got.CompletedContents, 2)
	assert.Equal(t, "rust-c0", got.CompletedContents[0].ContentID)
	assert.Equal(t, "rust-c1", got.CompletedContents[1].ContentID)
	assert.True(t, got.HasCompleted("rust-c1"))
	assert.False(t, got.HasCompleted("rust-c2"))

	list, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.FindByCourseSlug(ctx, user.ID+1, "rust-intro")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
