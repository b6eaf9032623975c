package model

import "time"

type ContentKind string

const (
	ContentLesson ContentKind = "lesson"
	ContentQuiz   ContentKind = "quiz"
)

// Course 课程快照，章节与内容的顺序即唯一合法的完成顺序
// swagger:model Course
type Course struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" validate:"required"`
	Slug        string    `gorm:"size:191;uniqueIndex;not null" json:"slug" validate:"required,slug"`
	Title       string    `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Revision    int       `gorm:"default:0" json:"revision"`
	Chapters    []Chapter `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters" validate:"dive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Chapter
type Chapter struct {
	ID       string    `gorm:"primaryKey;size:64" json:"id" validate:"required"`
	CourseID string    `gorm:"size:64;index;not null" json:"courseId"`
	Slug     string    `gorm:"size:191;not null" json:"slug" validate:"required,slug"`
	Title    string    `gorm:"size:255;not null" json:"title" validate:"required"`
	Position int       `gorm:"not null;default:0" json:"position"`
	Contents []Content `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"contents" validate:"dive"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// Content 单个学习单元（课时或测验）
// swagger:model Content
type Content struct {
	ID        string      `gorm:"primaryKey;size:64" json:"id" validate:"required"`
	CourseID  string      `gorm:"size:64;index;not null" json:"courseId"`
	ChapterID string      `gorm:"size:64;index;not null" json:"chapterId"`
	Kind      ContentKind `gorm:"size:16;not null" json:"kind" validate:"required,oneof=lesson quiz"`
	Title     string      `gorm:"size:255;not null" json:"title" validate:"required"`
	Slug      string      `gorm:"size:191;not null" json:"slug" validate:"required,slug"`
	Position  int         `gorm:"not null;default:0" json:"position"`
}

func (Content) TableName() string {
	return "contents"
}

// ContentCount 返回课程中的内容总数
func (c *Course) ContentCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, ch := range c.Chapters {
		n += len(ch.Contents)
	}
	return n
}

// FindContent 按 ID 查找内容
func (c *Course) FindContent(id string) (*Content, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Chapters {
		for j := range c.Chapters[i].Contents {
			if c.Chapters[i].Contents[j].ID == id {
				return &c.Chapters[i].Contents[j], true
			}
		}
	}
	return nil, false
}
