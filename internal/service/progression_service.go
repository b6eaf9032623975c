package service

import (
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/progression"
	"coder_edu_progress/internal/repository"
	"coder_edu_progress/pkg/tracing"
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ProgressionService 每次请求都重新计算进度，不持久化派生状态
type ProgressionService struct {
	Courses     *CourseService
	Enrollments *repository.EnrollmentRepository
}

func NewProgressionService(courses *CourseService, enrollments *repository.EnrollmentRepository) *ProgressionService {
	return &ProgressionService{Courses: courses, Enrollments: enrollments}
}

type CourseProgress struct {
	CourseID         string                           `json:"courseId"`
	Slug             string                           `json:"slug"`
	Title            string                           `json:"title"`
	Enrolled         bool                             `json:"enrolled"`
	Enrollment       *model.Enrollment                `json:"enrollment,omitempty"`
	Contents         []progression.ContentProgression `json:"contents"`
	Stats            progression.Stats                `json:"stats"`
	Chapters         []progression.ChapterStats       `json:"chapters"`
	CurrentContentID string                           `json:"currentContentId,omitempty"`
}

type Navigation struct {
	Location string                       `json:"location"`
	Items    []progression.NavigationItem `json:"items"`
	progression.Neighborhood
}

// load 并发读取课程与报名记录；未报名时 enrollment 为 nil
func (s *ProgressionService) load(ctx context.Context, userID uint, slug string) (*model.Course, *model.Enrollment, error) {
	var (
		course     *model.Course
		enrollment *model.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.Courses.GetCourse(gctx, slug)
		course = c
		return err
	})
	g.Go(func() error {
		e, err := s.Enrollments.FindByCourseSlug(gctx, userID, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		enrollment = e
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return course, enrollment, nil
}

func (s *ProgressionService) GetCourseProgress(ctx context.Context, userID uint, slug string) (*CourseProgress, error) {
	ctx, span := tracing.Start(ctx, "ProgressionService.GetCourseProgress")
	defer span.End()

	course, enrollment, err := s.load(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	contents := progression.ComputeProgression(course, enrollment)
	res := &CourseProgress{
		CourseID:   course.ID,
		Slug:       course.Slug,
		Title:      course.Title,
		Enrolled:   enrollment != nil,
		Enrollment: enrollment,
		Contents:   contents,
		Stats:      progression.Aggregate(contents),
		Chapters:   progression.AggregateByChapter(course, contents),
	}
	if cur, ok := progression.CurrentContent(contents); ok {
		res.CurrentContentID = cur.ID
	}
	return res, nil
}

func (s *ProgressionService) GetNavigation(ctx context.Context, userID uint, slug, location string) (*Navigation, error) {
	ctx, span := tracing.Start(ctx, "ProgressionService.GetNavigation")
	defer span.End()

	course, enrollment, err := s.load(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	location = progression.NormalizeLocation(location)
	items := progression.BuildNavigationList(course, progression.ComputeProgression(course, enrollment), location)
	return &Navigation{
		Location:     location,
		Items:        items,
		Neighborhood: progression.Neighbors(items, location),
	}, nil
}
