package service

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/testutil"
	"coder_edu_progress/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseService_Import(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, err := f.courses.Import(ctx, testutil.CourseDocument("go", "go-basics", 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, course.Revision)

	got, err := f.courses.GetCourse(ctx, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ContentCount())
	assert.True(t, f.cache.cached("go-basics"))

	rc, err := f.courses.Storage.Open(ctx, ArchiveKey("go-basics", 1))
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	var archived map[string]any
	require.NoError(t, json.Unmarshal(raw, &archived))
	assert.Equal(t, "go", archived["_id"])

	// re-import under a new slug drops both cache entries
	course, err = f.courses.Import(ctx, testutil.CourseDocument("go", "golang", 1))
	require.NoError(t, err)
	assert.Equal(t, 2, course.Revision)
	assert.False(t, f.cache.cached("go-basics"))
	assert.Contains(t, f.cache.invalidated, "go-basics")
	assert.Contains(t, f.cache.invalidated, "golang")

	_, err = f.courses.GetCourse(ctx, "go-basics")
	assert.ErrorIs(t, err, util.ErrInvalidCourse)
	got, err = f.courses.GetCourse(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ContentCount())
}

func TestCourseService_ImportRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.courses.Import(ctx, testutil.CourseDocument("go", "go-basics", 1))
	require.NoError(t, err)

	_, err = f.courses.Import(ctx, testutil.CourseDocument("other", "go-basics", 1))
	assert.True(t, util.IsValidationError(err), "slug taken by another course: %v", err)

	doc := testutil.CourseDocument("bad", "bad", 1)
	delete(doc, "_id")
	_, err = f.courses.Import(ctx, doc)
	assert.True(t, util.IsValidationError(err), "missing id: %v", err)
}

func TestCourseService_ImportKeepsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.courses.Import(ctx, testutil.CourseDocument("go", "go-basics", 3))
	require.NoError(t, err)
	user := testutil.SeedUser(t, f.db, "a@example.com", model.Student)
	_, _, err = f.enrollments.Enroll(ctx, user.ID, "go-basics")
	require.NoError(t, err)
	_, err = f.enrollments.CompleteContent(ctx, user.ID, "go-basics", "go-c0")
	require.NoError(t, err)

	// a new revision with an extra chapter keeps the completed prefix
	_, err = f.courses.Import(ctx, testutil.CourseDocument("go", "go-basics", 3, 2))
	require.NoError(t, err)

	p, err := f.progress.GetCourseProgress(ctx, user.ID, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stats.TotalCount)
	assert.Equal(t, 1, p.Stats.CompletedCount)
	assert.Equal(t, "go-c1", p.CurrentContentID)
}

func TestCourseService_ImportRejectsForeignIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docA := testutil.CourseDocument("a", "course-a", 2)
	firstContent(docA)["_id"] = "shared"
	_, err := f.courses.Import(ctx, docA)
	require.NoError(t, err)

	docB := testutil.CourseDocument("b", "course-b", 2)
	firstContent(docB)["_id"] = "shared"
	_, err = f.courses.Import(ctx, docB)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err), "content id owned by course a: %v", err)

	docC := testutil.CourseDocument("c", "course-c", 1)
	docC["chapters"].([]any)[0].(map[string]any)["_id"] = "a-ch0"
	_, err = f.courses.Import(ctx, docC)
	assert.True(t, util.IsValidationError(err), "chapter id owned by course a: %v", err)

	a, err := f.courses.GetCourse(ctx, "course-a")
	require.NoError(t, err)
	assert.Equal(t, 2, a.ContentCount())
	_, ok := a.FindContent("shared")
	assert.True(t, ok)
	_, err = f.courses.GetCourse(ctx, "course-b")
	assert.ErrorIs(t, err, util.ErrInvalidCourse)

	// the owner may re-import its own ids
	course, err := f.courses.Import(ctx, docA)
	require.NoError(t, err)
	assert.Equal(t, 2, course.Revision)
}

func TestCourseService_ImportRejectsUnsafeSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := testutil.CourseDocument("esc", "../../escaped", 1)
	_, err := f.courses.Import(ctx, doc)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err), "got %v", err)

	_, statErr := os.Stat(filepath.Join(f.storageDir, "..", "escaped"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(f.storageDir, "courses"))
	assert.True(t, os.IsNotExist(statErr))
}

func firstContent(doc map[string]any) map[string]any {
	return doc["chapters"].([]any)[0].(map[string]any)["contents"].([]any)[0].(map[string]any)
}
