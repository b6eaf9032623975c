// Package progression derives per-content learning state from a course and an
// enrollment. Everything here is a pure function of its inputs: callers
// recompute on every request and decide for themselves what to memoize.
package progression

import "coder_edu_progress/internal/model"

type State string

const (
	StateCompleted State = "completed"
	StateUnlocked  State = "unlocked"
	StateLocked    State = "locked"
)

// ContentProgression is the derived state of one content item.
type ContentProgression struct {
	ID               string            `json:"id"`
	Kind             model.ContentKind `json:"kind"`
	State            State             `json:"state"`
	IsCurrentContent bool              `json:"isCurrentContent"`
}

// Flatten returns the course contents in completion order: chapter order
// first, then content order within each chapter.
func Flatten(course *model.Course) []model.Content {
	if course == nil {
		return nil
	}
	out := make([]model.Content, 0, course.ContentCount())
	for _, ch := range course.Chapters {
		out = append(out, ch.Contents...)
	}
	return out
}

// completedSet collects the completed ids. Ids that are not part of the
// course never match during classification.
func completedSet(enrollment *model.Enrollment) map[string]struct{} {
	set := make(map[string]struct{})
	if enrollment == nil {
		return set
	}
	for _, c := range enrollment.CompletedContents {
		if c.ContentID == "" {
			continue
		}
		set[c.ContentID] = struct{}{}
	}
	return set
}

// CurrentIndex is the position of the first flattened content that is not
// in the completed set. ok is false for an empty course and for a fully
// completed one.
func CurrentIndex(contents []model.Content, completed map[string]struct{}) (index int, ok bool) {
	for i, c := range contents {
		if _, done := completed[c.ID]; !done {
			return i, true
		}
	}
	return len(contents), false
}

// ComputeProgression classifies every content of the course. Items before
// the first gap in the completed set are completed, the gap itself is the
// unlocked current item and everything after it is locked, even when a later
// id is present in the completed set. A nil enrollment means nothing is
// completed.
func ComputeProgression(course *model.Course, enrollment *model.Enrollment) []ContentProgression {
	contents := Flatten(course)
	result := make([]ContentProgression, len(contents))
	if len(contents) == 0 {
		return result
	}

	current, _ := CurrentIndex(contents, completedSet(enrollment))
	for i, c := range contents {
		p := ContentProgression{ID: c.ID, Kind: c.Kind}
		switch {
		case i < current:
			p.State = StateCompleted
		case i == current:
			p.State = StateUnlocked
			p.IsCurrentContent = true
		default:
			p.State = StateLocked
		}
		result[i] = p
	}
	return result
}

// CurrentContent returns the entry flagged as current, if any.
func CurrentContent(progression []ContentProgression) (ContentProgression, bool) {
	for _, p := range progression {
		if p.IsCurrentContent {
			return p, true
		}
	}
	return ContentProgression{}, false
}

// StateOf looks up the state of a content id. Unknown ids report locked.
func StateOf(progression []ContentProgression, id string) State {
	for _, p := range progression {
		if p.ID == id {
			return p.State
		}
	}
	return StateLocked
}

// Index maps content id to its progression entry.
func Index(progression []ContentProgression) map[string]ContentProgression {
	m := make(map[string]ContentProgression, len(progression))
	for _, p := range progression {
		m[p.ID] = p
	}
	return m
}
