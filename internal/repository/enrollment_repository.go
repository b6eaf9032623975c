package repository

import (
	"coder_edu_progress/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func completionsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("completed_at asc, id asc")
}

// Find 返回 gorm.ErrRecordNotFound 表示未报名
func (r *EnrollmentRepository) Find(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Preload("CompletedContents", completionsInOrder).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByCourseSlug 按课程 slug 查找，无需先加载课程
func (r *EnrollmentRepository) FindByCourseSlug(ctx context.Context, userID uint, slug string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Preload("CompletedContents", completionsInOrder).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.user_id = ? AND courses.slug = ?", userID, slug).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.WithContext(ctx).
		Preload("CompletedContents", completionsInOrder).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&es).Error
	return es, err
}

// CompletionUpdate 由调用方基于最新完成集合计算
type CompletionUpdate struct {
	PercentComplete float64
	DateCompleted   *time.Time
}

// RecordCompletion 在事务中追加完成记录，重新读取报名后交给 recompute 计算进度并保存。
// 重复完成时返回 gorm.ErrDuplicatedKey（需开启 TranslateError）。
func (r *EnrollmentRepository) RecordCompletion(
	ctx context.Context,
	enrollmentID string,
	contentID string,
	at time.Time,
	recompute func(e *model.Enrollment) CompletionUpdate,
) (*model.Enrollment, error) {
	var result model.Enrollment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.EnrollmentContent{
			EnrollmentID: enrollmentID,
			ContentID:    contentID,
			CompletedAt:  at,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		if err := tx.Preload("CompletedContents", completionsInOrder).
			Where("id = ?", enrollmentID).
			First(&result).Error; err != nil {
			return err
		}

		upd := recompute(&result)
		dateCompleted := result.DateCompleted
		if dateCompleted == nil {
			dateCompleted = upd.DateCompleted
		}
		if err := tx.Model(&model.Enrollment{}).Where("id = ?", enrollmentID).Updates(map[string]interface{}{
			"percent_complete": upd.PercentComplete,
			"date_completed":   dateCompleted,
			"revision":         gorm.Expr("revision + 1"),
		}).Error; err != nil {
			return err
		}

		result.PercentComplete = upd.PercentComplete
		result.DateCompleted = dateCompleted
		result.Revision++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
