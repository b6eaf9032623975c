package progression

import (
	"fmt"
	"testing"

	"coder_edu_progress/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProgression_EmptyCourse(t *testing.T) {
	got := ComputeProgression(&model.Course{ID: "empty"}, enrolled("x"))
	assert.Empty(t, got)
	assert.Equal(t, Stats{}, Aggregate(got))

	assert.Empty(t, ComputeProgression(nil, nil))
}

func TestComputeProgression_NoEnrollment(t *testing.T) {
	got := ComputeProgression(newCourse(3), nil)
	require.Len(t, got, 3)

	assert.Equal(t, []State{StateUnlocked, StateLocked, StateLocked}, states(got))
	assert.True(t, got[0].IsCurrentContent)
	assert.False(t, got[1].IsCurrentContent)
	assert.False(t, got[2].IsCurrentContent)
}

func TestComputeProgression_FullCompletion(t *testing.T) {
	got := ComputeProgression(newCourse(3), enrolled("id_0", "id_1", "id_2"))

	assert.Equal(t, []State{StateCompleted, StateCompleted, StateCompleted}, states(got))
	assert.Zero(t, countCurrent(got), "a finished course has no current item")
	_, ok := CurrentContent(got)
	assert.False(t, ok)
}

func TestComputeProgression_GapNeverUnlocksLaterItems(t *testing.T) {
	got := ComputeProgression(newCourse(3), enrolled("id_0", "id_2"))

	assert.Equal(t, []State{StateCompleted, StateUnlocked, StateLocked}, states(got))
	cur, ok := CurrentContent(got)
	require.True(t, ok)
	assert.Equal(t, "id_1", cur.ID)
}

func TestComputeProgression_OrderCrossesChapters(t *testing.T) {
	course := newCourse(2, 0, 2)
	got := ComputeProgression(course, enrolled("id_1", "id_0"))

	require.Len(t, got, 4)
	assert.Equal(t, []string{"id_0", "id_1", "id_2", "id_3"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
	assert.Equal(t, []State{StateCompleted, StateCompleted, StateUnlocked, StateLocked}, states(got))
}

func TestComputeProgression_IgnoresForeignIDs(t *testing.T) {
	got := ComputeProgression(newCourse(2), enrolled("other-course-item", "", "id_0"))

	assert.Equal(t, []State{StateCompleted, StateUnlocked}, states(got))
}

func TestComputeProgression_PrefixCompletion(t *testing.T) {
	const total = 6
	course := newCourse(2, 3, 1)

	for k := 0; k <= total; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			ids := make([]string, 0, k)
			for i := 0; i < k; i++ {
				ids = append(ids, fmt.Sprintf("id_%d", i))
			}
			got := ComputeProgression(course, enrolled(ids...))
			require.Len(t, got, total)

			stats := Aggregate(got)
			assert.Equal(t, k, stats.CompletedCount)

			unlocked, locked := 0, 0
			for _, p := range got {
				switch p.State {
				case StateUnlocked:
					unlocked++
				case StateLocked:
					locked++
				}
			}
			if k == total {
				assert.Equal(t, 0, unlocked)
				assert.Equal(t, 0, locked)
				assert.Equal(t, 0, countCurrent(got))
			} else {
				assert.Equal(t, 1, unlocked)
				assert.Equal(t, total-k-1, locked)
				assert.Equal(t, 1, countCurrent(got))
				assert.Equal(t, fmt.Sprintf("id_%d", k), got[k].ID)
				assert.True(t, got[k].IsCurrentContent)
			}

			// completed entries always form a prefix
			seenOther := false
			for _, p := range got {
				if p.State != StateCompleted {
					seenOther = true
					continue
				}
				assert.False(t, seenOther, "completed item after a non-completed one")
			}
		})
	}
}

func TestComputeProgression_Idempotent(t *testing.T) {
	course := newCourse(2, 2)
	e := enrolled("id_0", "id_2")

	first := ComputeProgression(course, e)
	second := ComputeProgression(course, e)
	assert.Equal(t, first, second)
	assert.Len(t, e.CompletedContents, 2, "enrollment must not be mutated")
}

func TestStateOf(t *testing.T) {
	got := ComputeProgression(newCourse(3), enrolled("id_0"))

	assert.Equal(t, StateCompleted, StateOf(got, "id_0"))
	assert.Equal(t, StateUnlocked, StateOf(got, "id_1"))
	assert.Equal(t, StateLocked, StateOf(got, "id_2"))
	assert.Equal(t, StateLocked, StateOf(got, "missing"))
}
