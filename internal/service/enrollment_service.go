package service

import (
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/progression"
	"coder_edu_progress/internal/repository"
	"coder_edu_progress/internal/util"
	"coder_edu_progress/pkg/logger"
	"coder_edu_progress/pkg/monitoring"
	"coder_edu_progress/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService 报名与完成记录，唯一会修改 contentsCompleted 的地方
type EnrollmentService struct {
	Courses *CourseService
	Repo    *repository.EnrollmentRepository
	Now     func() time.Time
}

func NewEnrollmentService(courses *CourseService, repo *repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{Courses: courses, Repo: repo, Now: time.Now}
}

// Enroll 重复报名返回已有记录，created 为 false
func (s *EnrollmentService) Enroll(ctx context.Context, userID uint, courseSlug string) (e *model.Enrollment, created bool, err error) {
	ctx, span := tracing.Start(ctx, "EnrollmentService.Enroll")
	defer span.End()

	course, err := s.Courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.Repo.Find(ctx, userID, course.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	e = &model.Enrollment{UserID: userID, CourseID: course.ID}
	if err := s.Repo.Create(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.Repo.Find(ctx, userID, course.ID)
			return existing, false, findErr
		}
		return nil, false, err
	}

	monitoring.EnrollmentCounter.Inc()
	logger.Log.Info("learner enrolled", zap.Uint("userId", userID), zap.String("courseId", course.ID))
	return e, true, nil
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, userID uint, courseSlug string) (*model.Enrollment, error) {
	course, err := s.Courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	e, err := s.Repo.Find(ctx, userID, course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	return e, err
}

// ListEnrollments 返回用户的全部报名记录，最近报名的在前
func (s *EnrollmentService) ListEnrollments(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	es, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	if es == nil {
		es = []model.Enrollment{}
	}
	return es, nil
}

type CompletionResult struct {
	Enrollment *model.Enrollment                `json:"enrollment"`
	Contents   []progression.ContentProgression `json:"contents"`
	Stats      progression.Stats                `json:"stats"`
}

// CompleteContent 记录一个内容的完成。只有当前解锁的内容可以完成，
// 顺序之外的完成会被拒绝而不是静默接受。
func (s *EnrollmentService) CompleteContent(ctx context.Context, userID uint, courseSlug, contentID string) (*CompletionResult, error) {
	ctx, span := tracing.Start(ctx, "EnrollmentService.CompleteContent")
	defer span.End()

	course, err := s.Courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}

	content, ok := course.FindContent(contentID)
	if !ok {
		return nil, util.NewValidationError("contentId", "content does not belong to course "+course.Slug)
	}

	e, err := s.Repo.Find(ctx, userID, course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	if e.HasCompleted(contentID) {
		return nil, util.ErrAlreadyCompleted
	}
	if progression.StateOf(progression.ComputeProgression(course, e), contentID) == progression.StateLocked {
		return nil, util.NewValidationError("contentId", "content is locked")
	}

	now := s.Now()
	updated, err := s.Repo.RecordCompletion(ctx, e.ID, contentID, now, func(fresh *model.Enrollment) repository.CompletionUpdate {
		stats := progression.Aggregate(progression.ComputeProgression(course, fresh))
		upd := repository.CompletionUpdate{PercentComplete: stats.ProgressPercentage}
		if stats.IsComplete() {
			upd.DateCompleted = &now
		}
		return upd
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrAlreadyCompleted
	}
	if err != nil {
		return nil, err
	}

	monitoring.CompletionCounter.WithLabelValues(string(content.Kind)).Inc()

	contents := progression.ComputeProgression(course, updated)
	stats := progression.Aggregate(contents)
	logger.Log.Info("content completed",
		zap.Uint("userId", userID),
		zap.String("courseId", course.ID),
		zap.String("contentId", contentID),
		zap.Float64("percent", stats.ProgressPercentage),
	)
	if updated.DateCompleted != nil && stats.IsComplete() {
		logger.Log.Info("course completed", zap.Uint("userId", userID), zap.String("courseId", course.ID))
	}

	return &CompletionResult{Enrollment: updated, Contents: contents, Stats: stats}, nil
}
