package service

import (
	"coder_edu_progress/internal/cms"
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/repository"
	"coder_edu_progress/internal/util"
	"coder_edu_progress/pkg/logger"
	"coder_edu_progress/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	Repo    *repository.CourseRepository
	Storage *StorageService
	Cache   CourseCache
}

func NewCourseService(repo *repository.CourseRepository, storage *StorageService, cache CourseCache) *CourseService {
	if cache == nil {
		cache = NopCourseCache{}
	}
	return &CourseService{Repo: repo, Storage: storage, Cache: cache}
}

// GetCourse 先查缓存再查库，课程不存在时返回 util.ErrInvalidCourse
func (s *CourseService) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	if course, ok := s.Cache.Get(ctx, slug); ok {
		return course, nil
	}

	course, err := s.Repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCourse
	}
	if err != nil {
		return nil, fmt.Errorf("load course %q: %w", slug, err)
	}

	s.Cache.Set(ctx, course)
	return course, nil
}

// Import 规范化 CMS 文档并整体替换课程结构，原始文档归档到存储
func (s *CourseService) Import(ctx context.Context, doc cms.Document) (*model.Course, error) {
	ctx, span := tracing.Start(ctx, "CourseService.Import")
	defer span.End()

	course, err := cms.Normalize(doc)
	if err != nil {
		return nil, err
	}

	owner, err := s.Repo.SlugOwner(ctx, course.Slug)
	if err != nil {
		return nil, err
	}
	if owner != "" && owner != course.ID {
		return nil, util.NewValidationError("slug", fmt.Sprintf("slug %q is used by course %s", course.Slug, owner))
	}

	if err := s.checkOwnership(ctx, course); err != nil {
		return nil, err
	}

	var previousSlug string
	if prev, err := s.Repo.FindByID(ctx, course.ID); err == nil {
		previousSlug = prev.Slug
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.Repo.ReplaceTree(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.NewValidationError("contents.id", "id is used by another course")
		}
		return nil, fmt.Errorf("save course %s: %w", course.ID, err)
	}

	s.Cache.Invalidate(ctx, course.Slug, previousSlug)
	s.archive(ctx, course, doc)

	logger.Log.Info("course imported",
		zap.String("courseId", course.ID),
		zap.String("slug", course.Slug),
		zap.Int("revision", course.Revision),
		zap.Int("contents", course.ContentCount()),
	)
	return course, nil
}

// checkOwnership 章节和内容 ID 全局唯一，拒绝复用其他课程的 ID
func (s *CourseService) checkOwnership(ctx context.Context, course *model.Course) error {
	var chapterIDs, contentIDs []string
	for _, ch := range course.Chapters {
		chapterIDs = append(chapterIDs, ch.ID)
		for _, c := range ch.Contents {
			contentIDs = append(contentIDs, c.ID)
		}
	}

	owners, err := s.Repo.ForeignChapters(ctx, course.ID, chapterIDs)
	if err != nil {
		return err
	}
	for _, id := range chapterIDs {
		if owner, ok := owners[id]; ok {
			return util.NewValidationError("chapters.id", fmt.Sprintf("chapter id %q is used by course %s", id, owner))
		}
	}

	owners, err = s.Repo.ForeignContents(ctx, course.ID, contentIDs)
	if err != nil {
		return err
	}
	for _, id := range contentIDs {
		if owner, ok := owners[id]; ok {
			return util.NewValidationError("contents.id", fmt.Sprintf("content id %q is used by course %s", id, owner))
		}
	}
	return nil
}

// archive 归档失败只记录日志，不影响导入结果
func (s *CourseService) archive(ctx context.Context, course *model.Course, doc cms.Document) {
	if s.Storage == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Log.Warn("encode course document failed", zap.String("courseId", course.ID), zap.Error(err))
		return
	}
	key := ArchiveKey(course.Slug, course.Revision)
	if _, err := s.Storage.Archive(ctx, key, data); err != nil {
		logger.Log.Warn("archive course document failed", zap.String("key", key), zap.Error(err))
	}
}

// OpenArchive 读取某个版本导入时的原始文档
func (s *CourseService) OpenArchive(ctx context.Context, slug string, revision int) (io.ReadCloser, error) {
	if s.Storage == nil {
		return nil, util.ErrInvalidCourse
	}
	if slug == "" || cms.Slugify(slug) != slug {
		return nil, util.NewValidationError("slug", "invalid slug")
	}
	return s.Storage.Open(ctx, ArchiveKey(slug, revision))
}

func ArchiveKey(slug string, revision int) string {
	return fmt.Sprintf("courses/%s/rev-%d.json", slug, revision)
}
