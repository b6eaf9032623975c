// Package testutil provides an in-memory database and fixtures for
// repository, service and controller tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"coder_edu_progress/internal/cms"
	"coder_edu_progress/internal/model"
	"coder_edu_progress/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a private in-memory SQLite database with the full schema.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// CourseDocument builds a CMS document with one chapter per size entry.
// Content ids are "<courseID>-c<n>" numbered across the whole course.
func CourseDocument(courseID, slug string, sizes ...int) cms.Document {
	chapters := make([]any, 0, len(sizes))
	n := 0
	for ci, size := range sizes {
		contents := make([]any, 0, size)
		for j := 0; j < size; j++ {
			kind := "lesson"
			if j == size-1 && size > 1 {
				kind = "quiz"
			}
			contents = append(contents, map[string]any{
				"_id":   fmt.Sprintf("%s-c%d", courseID, n),
				"_type": kind,
				"title": fmt.Sprintf("Content %d", n),
				"slug":  fmt.Sprintf("content-%d", n),
			})
			n++
		}
		chapters = append(chapters, map[string]any{
			"_id":      fmt.Sprintf("%s-ch%d", courseID, ci),
			"title":    fmt.Sprintf("Chapter %d", ci),
			"slug":     fmt.Sprintf("chapter-%d", ci),
			"contents": contents,
		})
	}
	return cms.Document{
		"_id":      courseID,
		"title":    "Course " + courseID,
		"slug":     slug,
		"chapters": chapters,
	}
}

// SeedCourse normalizes and stores a course document.
func SeedCourse(tb testing.TB, db *gorm.DB, doc cms.Document) *model.Course {
	tb.Helper()
	course, err := cms.Normalize(doc)
	if err != nil {
		tb.Fatalf("normalize course: %v", err)
	}
	if err := db.Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return course
}

func SeedUser(tb testing.TB, db *gorm.DB, email string, role model.UserRole) *model.User {
	tb.Helper()
	u := &model.User{Name: email, Email: email, Role: role}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
