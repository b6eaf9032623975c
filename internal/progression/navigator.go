package progression

import (
	"path"
	"strings"

	"coder_edu_progress/internal/model"
)

type ItemKind string

const (
	ItemChapter ItemKind = "chapter"
	ItemLesson  ItemKind = "lesson"
	ItemQuiz    ItemKind = "quiz"
)

// NavigationItem is one entry of the flattened course outline.
type NavigationItem struct {
	Kind             ItemKind `json:"kind"`
	ID               string   `json:"id"`
	ChapterID        string   `json:"chapterId"`
	Title            string   `json:"title"`
	Path             string   `json:"path"`
	IsLocked         bool     `json:"isLocked"`
	IsCompleted      bool     `json:"isCompleted"`
	IsCurrent        bool     `json:"isCurrent"`
	IsCurrentContent bool     `json:"isCurrentContent"`
}

func ChapterPath(course *model.Course, ch *model.Chapter) string {
	return path.Join("/courses", course.Slug, ch.Slug)
}

func ContentPath(course *model.Course, c *model.Content) string {
	segment := "lessons"
	if c.Kind == model.ContentQuiz {
		segment = "quizzes"
	}
	return path.Join("/courses", course.Slug, segment, c.Slug)
}

// NormalizeLocation strips a trailing slash so that "/a/b/" and "/a/b" match.
func NormalizeLocation(location string) string {
	if len(location) > 1 {
		location = strings.TrimRight(location, "/")
	}
	return location
}

// BuildNavigationList interleaves chapter markers with their contents.
// Chapters are never locked. IsCurrent follows the route location: a chapter
// is current only when the location points at the chapter itself.
func BuildNavigationList(course *model.Course, progression []ContentProgression, location string) []NavigationItem {
	if course == nil {
		return nil
	}
	location = NormalizeLocation(location)
	byID := Index(progression)

	items := make([]NavigationItem, 0, len(course.Chapters)+course.ContentCount())
	for i := range course.Chapters {
		ch := &course.Chapters[i]
		chapter := NavigationItem{
			Kind:  ItemChapter,
			ID:    ch.ID,
			Title: ch.Title,
			Path:  ChapterPath(course, ch),
		}
		chapter.IsCurrent = chapter.Path == location
		chapter.IsCompleted = len(ch.Contents) > 0
		items = append(items, chapter)
		chapterIdx := len(items) - 1

		for j := range ch.Contents {
			c := &ch.Contents[j]
			p, ok := byID[c.ID]
			if !ok {
				p = ContentProgression{ID: c.ID, State: StateLocked}
			}
			kind := ItemLesson
			if c.Kind == model.ContentQuiz {
				kind = ItemQuiz
			}
			item := NavigationItem{
				Kind:             kind,
				ID:               c.ID,
				ChapterID:        ch.ID,
				Title:            c.Title,
				Path:             ContentPath(course, c),
				IsLocked:         p.State == StateLocked,
				IsCompleted:      p.State == StateCompleted,
				IsCurrentContent: p.IsCurrentContent,
			}
			item.IsCurrent = item.Path == location
			if !item.IsCompleted {
				items[chapterIdx].IsCompleted = false
			}
			items = append(items, item)
		}
	}
	return items
}

// LocateCurrent finds the entry whose path equals the route location.
func LocateCurrent(items []NavigationItem, location string) (int, bool) {
	location = NormalizeLocation(location)
	return LocateCurrentFunc(items, func(itemPath string) bool {
		return itemPath == location
	})
}

// LocateCurrentFunc uses a caller supplied matcher, e.g. for prefix matching
// of nested routes. The first match wins.
func LocateCurrentFunc(items []NavigationItem, match func(itemPath string) bool) (int, bool) {
	for i, it := range items {
		if match(it.Path) {
			return i, true
		}
	}
	return -1, false
}

func Previous(items []NavigationItem, index int) (NavigationItem, bool) {
	if index <= 0 || index > len(items) {
		return NavigationItem{}, false
	}
	return items[index-1], true
}

func Next(items []NavigationItem, index int) (NavigationItem, bool) {
	if index < 0 || index+1 >= len(items) {
		return NavigationItem{}, false
	}
	return items[index+1], true
}

// CanAdvance is true iff a next item exists and it is not locked.
func CanAdvance(next NavigationItem, ok bool) bool {
	return ok && !next.IsLocked
}

// Neighborhood is what a "previous / next" control needs for one route.
type Neighborhood struct {
	Index      int             `json:"index"`
	Found      bool            `json:"found"`
	Previous   *NavigationItem `json:"previous,omitempty"`
	Next       *NavigationItem `json:"next,omitempty"`
	CanAdvance bool            `json:"canAdvance"`
}

func Neighbors(items []NavigationItem, location string) Neighborhood {
	idx, found := LocateCurrent(items, location)
	n := Neighborhood{Index: idx, Found: found}
	if !found {
		return n
	}
	if prev, ok := Previous(items, idx); ok {
		n.Previous = &prev
	}
	next, ok := Next(items, idx)
	if ok {
		n.Next = &next
	}
	n.CanAdvance = CanAdvance(next, ok)
	return n
}
