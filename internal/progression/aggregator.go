package progression

import "coder_edu_progress/internal/model"

// Stats is the course level summary of a progression.
type Stats struct {
	CompletedCount     int     `json:"completedCount"`
	TotalCount         int     `json:"totalCount"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

func Aggregate(progression []ContentProgression) Stats {
	s := Stats{TotalCount: len(progression)}
	for _, p := range progression {
		if p.State == StateCompleted {
			s.CompletedCount++
		}
	}
	if s.TotalCount > 0 {
		s.ProgressPercentage = float64(s.CompletedCount) / float64(s.TotalCount) * 100
	}
	return s
}

// IsComplete reports whether every content of a non-empty progression is completed.
func (s Stats) IsComplete() bool {
	return s.TotalCount > 0 && s.CompletedCount == s.TotalCount
}

type ChapterStats struct {
	ChapterID string `json:"chapterId"`
	Title     string `json:"title"`
	Stats
}

// AggregateByChapter splits the progression along chapter boundaries.
func AggregateByChapter(course *model.Course, progression []ContentProgression) []ChapterStats {
	if course == nil {
		return nil
	}
	byID := Index(progression)
	out := make([]ChapterStats, 0, len(course.Chapters))
	for _, ch := range course.Chapters {
		part := make([]ContentProgression, 0, len(ch.Contents))
		for _, c := range ch.Contents {
			if p, ok := byID[c.ID]; ok {
				part = append(part, p)
			}
		}
		out = append(out, ChapterStats{
			ChapterID: ch.ID,
			Title:     ch.Title,
			Stats:     Aggregate(part),
		})
	}
	return out
}
