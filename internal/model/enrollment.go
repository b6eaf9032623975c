package model

import "time"

// Enrollment 学员与课程的关联，记录已完成的内容
// swagger:model Enrollment
type Enrollment struct {
	UUIDBase
	UserID            uint                `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID          string              `gorm:"size:64;uniqueIndex:idx_user_course;not null" json:"courseId"`
	PercentComplete   float64             `gorm:"default:0" json:"percentComplete"`
	DateCompleted     *time.Time          `json:"dateCompleted,omitempty"`
	Revision          int                 `gorm:"default:0" json:"revision"`
	CompletedContents []EnrollmentContent `gorm:"foreignKey:EnrollmentID" json:"contentsCompleted"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// HasCompleted 判断内容是否已在完成集合中
func (e *Enrollment) HasCompleted(contentID string) bool {
	if e == nil {
		return false
	}
	for _, c := range e.CompletedContents {
		if c.ContentID == contentID {
			return true
		}
	}
	return false
}

// swagger:model EnrollmentContent
type EnrollmentContent struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	EnrollmentID string    `gorm:"size:36;uniqueIndex:idx_enrollment_content;not null" json:"-"`
	ContentID    string    `gorm:"size:64;uniqueIndex:idx_enrollment_content;not null" json:"id"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (EnrollmentContent) TableName() string {
	return "enrollment_contents"
}
