package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		want      Stats
	}{
		{"nothing done", nil, Stats{CompletedCount: 0, TotalCount: 4, ProgressPercentage: 0}},
		{"one of four", []string{"id_0"}, Stats{CompletedCount: 1, TotalCount: 4, ProgressPercentage: 25}},
		{"gap counts only the prefix", []string{"id_0", "id_2", "id_3"}, Stats{CompletedCount: 1, TotalCount: 4, ProgressPercentage: 25}},
		{"all", []string{"id_0", "id_1", "id_2", "id_3"}, Stats{CompletedCount: 4, TotalCount: 4, ProgressPercentage: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(ComputeProgression(newCourse(4), enrolled(tt.completed...)))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.ProgressPercentage == 0, got.CompletedCount == 0)
			assert.Equal(t, got.ProgressPercentage == 100, got.CompletedCount == got.TotalCount)
			assert.Equal(t, got.ProgressPercentage == 100, got.IsComplete())
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	assert.Equal(t, Stats{}, got)
	assert.False(t, got.IsComplete())
}

func TestAggregateByChapter(t *testing.T) {
	course := newCourse(2, 3, 0)
	got := AggregateByChapter(course, ComputeProgression(course, enrolled("id_0", "id_1", "id_2")))

	if assert.Len(t, got, 3) {
		assert.Equal(t, "ch-0", got[0].ChapterID)
		assert.Equal(t, 2, got[0].CompletedCount)
		assert.InDelta(t, 100.0, got[0].ProgressPercentage, 1e-9)

		assert.Equal(t, 1, got[1].CompletedCount)
		assert.Equal(t, 3, got[1].TotalCount)
		assert.InDelta(t, 100.0/3, got[1].ProgressPercentage, 1e-9)

		assert.Equal(t, Stats{}, got[2].Stats)
	}
}
