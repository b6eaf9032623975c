package progression

import (
	"fmt"

	"coder_edu_progress/internal/model"
)

// newCourse builds a course with one chapter per entry of sizes.
func newCourse(sizes ...int) *model.Course {
	course := &model.Course{ID: "course-1", Slug: "go-basics", Title: "Go Basics"}
	n := 0
	for ci, size := range sizes {
		ch := model.Chapter{
			ID:       fmt.Sprintf("ch-%d", ci),
			CourseID: course.ID,
			Slug:     fmt.Sprintf("chapter-%d", ci),
			Title:    fmt.Sprintf("Chapter %d", ci),
			Position: ci,
		}
		for j := 0; j < size; j++ {
			kind := model.ContentLesson
			if j == size-1 && size > 1 {
				kind = model.ContentQuiz
			}
			ch.Contents = append(ch.Contents, model.Content{
				ID:        fmt.Sprintf("id_%d", n),
				CourseID:  course.ID,
				ChapterID: ch.ID,
				Kind:      kind,
				Title:     fmt.Sprintf("Content %d", n),
				Slug:      fmt.Sprintf("content-%d", n),
				Position:  j,
			})
			n++
		}
		course.Chapters = append(course.Chapters, ch)
	}
	return course
}

func enrolled(ids ...string) *model.Enrollment {
	e := &model.Enrollment{UserID: 1, CourseID: "course-1"}
	for _, id := range ids {
		e.CompletedContents = append(e.CompletedContents, model.EnrollmentContent{ContentID: id})
	}
	return e
}

func states(progression []ContentProgression) []State {
	out := make([]State, len(progression))
	for i, p := range progression {
		out[i] = p.State
	}
	return out
}

func countCurrent(progression []ContentProgression) int {
	n := 0
	for _, p := range progression {
		if p.IsCurrentContent {
			n++
		}
	}
	return n
}
