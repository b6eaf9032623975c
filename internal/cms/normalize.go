package cms

import (
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/util"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// slug 必须与 Slugify 的输出一致
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && Slugify(s) == s
	})
}

func kindOf(raw string) model.ContentKind {
	switch strings.ToLower(raw) {
	case "lesson", "video", "article":
		return model.ContentLesson
	case "quiz", "exercise", "assessment":
		return model.ContentQuiz
	}
	return model.ContentKind(strings.ToLower(raw))
}

// Normalize converts a CMS course document into a validated course tree.
// Positions follow document order.
func Normalize(doc Document) (*model.Course, error) {
	if doc == nil {
		return nil, util.NewValidationError("course", "empty document")
	}
	course := &model.Course{
		ID:          str(doc, "_id", "id"),
		Title:       str(doc, "title", "name"),
		Slug:        str(doc, "slug"),
		Description: str(doc, "description", "summary"),
	}
	if course.Slug == "" {
		course.Slug = Slugify(course.Title)
	}

	for ci, rawChapter := range list(doc, "chapters", "modules", "sections") {
		ch := model.Chapter{
			ID:       str(rawChapter, "_id", "id"),
			CourseID: course.ID,
			Title:    str(rawChapter, "title", "name"),
			Slug:     str(rawChapter, "slug"),
			Position: ci,
		}
		if ch.Slug == "" {
			ch.Slug = Slugify(ch.Title)
		}
		// array keys are only unique inside one document
		if ch.ID == "" && course.ID != "" {
			if key := str(rawChapter, "_key"); key != "" {
				ch.ID = course.ID + "-" + key
			} else {
				ch.ID = fmt.Sprintf("%s-ch-%d", course.ID, ci)
			}
		}

		for pos, rawContent := range list(rawChapter, "contents", "lessons", "items") {
			c := model.Content{
				ID:        str(rawContent, "_id", "id"),
				CourseID:  course.ID,
				ChapterID: ch.ID,
				Kind:      kindOf(str(rawContent, "kind", "_type", "type")),
				Title:     str(rawContent, "title", "question", "prompt", "name"),
				Slug:      str(rawContent, "slug"),
				Position:  pos,
			}
			if c.Slug == "" {
				c.Slug = Slugify(c.Title)
			}
			ch.Contents = append(ch.Contents, c)
		}
		course.Chapters = append(course.Chapters, ch)
	}

	if err := Validate(course); err != nil {
		return nil, err
	}
	return course, nil
}

// Validate checks field constraints and the uniqueness rules the
// navigation paths depend on.
func Validate(course *model.Course) error {
	if err := validate.Struct(course); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return util.NewValidationError(fe.Namespace(), "failed on "+fe.Tag())
		}
		return util.NewValidationError("course", err.Error())
	}

	chapterIDs := make(map[string]bool)
	chapterSlugs := make(map[string]bool)
	contentIDs := make(map[string]bool)
	contentPaths := make(map[string]bool)
	for _, ch := range course.Chapters {
		if chapterIDs[ch.ID] {
			return util.NewValidationError("chapters.id", "duplicate chapter id "+ch.ID)
		}
		chapterIDs[ch.ID] = true
		if chapterSlugs[ch.Slug] {
			return util.NewValidationError("chapters.slug", "duplicate chapter slug "+ch.Slug)
		}
		chapterSlugs[ch.Slug] = true

		for _, c := range ch.Contents {
			if contentIDs[c.ID] {
				return util.NewValidationError("contents.id", "duplicate content id "+c.ID)
			}
			contentIDs[c.ID] = true
			key := string(c.Kind) + "/" + c.Slug
			if contentPaths[key] {
				return util.NewValidationError("contents.slug", "duplicate "+string(c.Kind)+" slug "+c.Slug)
			}
			contentPaths[key] = true
		}
	}
	return nil
}
