package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"coder_edu_progress/internal/config"
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/repository"
	"coder_edu_progress/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	storageDir  string
	cache       *memoryCache
	courses     *CourseService
	enrollments *EnrollmentService
	progress    *ProgressionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	dir := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: dir}})
	cache := newMemoryCache()

	courses := NewCourseService(repository.NewCourseRepository(db), storage, cache)
	enrollRepo := repository.NewEnrollmentRepository(db)
	enrollments := NewEnrollmentService(courses, enrollRepo)
	var clockMu sync.Mutex
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	enrollments.Now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}

	return &fixture{
		db:          db,
		storageDir:  dir,
		cache:       cache,
		courses:     courses,
		enrollments: enrollments,
		progress:    NewProgressionService(courses, enrollRepo),
	}
}

// memoryCache records invalidations so tests can assert on them.
type memoryCache struct {
	mu          sync.Mutex
	items       map[string]*model.Course
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*model.Course)}
}

func (m *memoryCache) Get(_ context.Context, slug string) (*model.Course, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[slug]
	return c, ok
}

func (m *memoryCache) Set(_ context.Context, course *model.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[course.Slug] = course
}

func (m *memoryCache) Invalidate(_ context.Context, slugs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slugs {
		if s == "" {
			continue
		}
		delete(m.items, s)
		m.invalidated = append(m.invalidated, s)
	}
}

func (m *memoryCache) cached(slug string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[slug]
	return ok
}
