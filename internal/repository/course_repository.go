package repository

import (
	"coder_edu_progress/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// withTree 按作者定义的顺序预加载章节和内容
func withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Preload("Chapters.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		})
}

func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var course model.Course
	err := withTree(r.DB.WithContext(ctx)).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := withTree(r.DB.WithContext(ctx)).Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// SlugOwner 返回占用该 slug 的课程 ID，未占用时返回空字符串
func (r *CourseRepository) SlugOwner(ctx context.Context, slug string) (string, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Select("id").Where("slug = ?", slug).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return course.ID, nil
}

// ForeignChapters 返回 ids 中已属于其他课程的章节，键为章节 ID，值为所属课程 ID
func (r *CourseRepository) ForeignChapters(ctx context.Context, courseID string, ids []string) (map[string]string, error) {
	var rows []model.Chapter
	if err := r.foreign(ctx, &rows, courseID, ids); err != nil {
		return nil, err
	}
	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		owners[row.ID] = row.CourseID
	}
	return owners, nil
}

// ForeignContents 返回 ids 中已属于其他课程的内容，键为内容 ID，值为所属课程 ID
func (r *CourseRepository) ForeignContents(ctx context.Context, courseID string, ids []string) (map[string]string, error) {
	var rows []model.Content
	if err := r.foreign(ctx, &rows, courseID, ids); err != nil {
		return nil, err
	}
	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		owners[row.ID] = row.CourseID
	}
	return owners, nil
}

func (r *CourseRepository) foreign(ctx context.Context, dest interface{}, courseID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Select("id", "course_id").
		Where("id IN ? AND course_id <> ?", ids, courseID).
		Find(dest).Error
}

// ReplaceTree 在一个事务中写入课程并整体替换其章节与内容，Revision 自增
func (r *CourseRepository) ReplaceTree(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Course
		err := tx.Select("id", "revision", "created_at").Where("id = ?", course.ID).First(&existing).Error
		switch {
		case err == nil:
			course.Revision = existing.Revision + 1
			course.CreatedAt = existing.CreatedAt
			if err := tx.Model(&model.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
				"slug":        course.Slug,
				"title":       course.Title,
				"description": course.Description,
				"revision":    course.Revision,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			course.Revision = 1
			if err := tx.Omit(clause.Associations).Create(course).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Content{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Chapter{}).Error; err != nil {
			return err
		}

		var contents []model.Content
		for i := range course.Chapters {
			ch := &course.Chapters[i]
			ch.CourseID = course.ID
			for j := range ch.Contents {
				ch.Contents[j].CourseID = course.ID
				ch.Contents[j].ChapterID = ch.ID
				contents = append(contents, ch.Contents[j])
			}
		}
		if len(course.Chapters) == 0 {
			return nil
		}
		// 关联写入会对已存在的主键做 upsert，这里分开插入，主键冲突直接报错
		if err := tx.Omit(clause.Associations).Create(&course.Chapters).Error; err != nil {
			return err
		}
		if len(contents) == 0 {
			return nil
		}
		return tx.Create(&contents).Error
	})
}
