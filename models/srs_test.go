package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewTime = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

func TestReviewPromotesOneStage(t *testing.T) {
	for stage := 0; stage < 9; stage++ {
		srs := SrsState{Stage: stage, Level: 1}
		srs.Review(0, reviewTime)

		assert.Equal(t, stage+1, srs.Stage, "from stage %d", stage)
		assert.Equal(t, stage+1 >= StageGuru, srs.Passed, "from stage %d", stage)
	}
}

func TestReviewTruncatesTimestampToHour(t *testing.T) {
	srs := NewSrsState(1)
	srs.Review(0, reviewTime)

	require.NotNil(t, srs.LastReview)
	assert.Equal(t, time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC), *srs.LastReview)
}

func TestReviewDemotion(t *testing.T) {
	tests := []struct {
		name     string
		stage    int
		mistakes int
		want     int
	}{
		{"single mistake below guru", 3, 1, 2},
		{"two mistakes below guru", 4, 2, 3},
		{"two mistakes above guru doubles the step", 6, 2, 4},
		{"three mistakes round up", 4, 3, 2},
		{"floor is stage one", 2, 10, 1},
		{"floor from guru", 5, 99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srs := SrsState{Stage: tt.stage, Level: 1}
			srs.Review(tt.mistakes, reviewTime)
			assert.Equal(t, tt.want, srs.Stage)
		})
	}
}

func TestDemotionNeverReachesZero(t *testing.T) {
	for stage := 1; stage < 9; stage++ {
		for mistakes := 1; mistakes <= 20; mistakes++ {
			srs := SrsState{Stage: stage, Level: 1}
			srs.Review(mistakes, reviewTime)
			assert.GreaterOrEqual(t, srs.Stage, 1, "stage %d mistakes %d", stage, mistakes)
		}
	}
}

func TestPassedIsMonotonic(t *testing.T) {
	srs := SrsState{Stage: 4, Level: 1}
	srs.Review(0, reviewTime)
	require.True(t, srs.Passed)

	// Demote hard and keep failing; passed must survive.
	for i := 0; i < 5; i++ {
		srs.Review(6, reviewTime)
		assert.True(t, srs.Passed)
	}
}

func TestBurnedIsAbsorbing(t *testing.T) {
	srs := SrsState{Stage: 8, Level: 1, Passed: true}
	srs.Review(0, reviewTime)
	require.Equal(t, StageBurned, srs.Stage)

	stamp := *srs.LastReview
	srs.Review(4, reviewTime.Add(time.Hour))
	assert.Equal(t, StageBurned, srs.Stage)
	assert.True(t, srs.Passed)
	assert.Equal(t, stamp, *srs.LastReview, "burned items keep their last timestamp")
}

func TestCompleteLessonIsReviewWithoutMistakes(t *testing.T) {
	srs := NewSrsState(1)
	srs.CompleteLesson(reviewTime)

	assert.Equal(t, 1, srs.Stage)
	assert.False(t, srs.Passed)
	require.NotNil(t, srs.LastReview)
}

func TestIsPending(t *testing.T) {
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("never reviewed is always pending", func(t *testing.T) {
		srs := NewSrsState(1)
		assert.True(t, srs.IsPending(now))
	})

	t.Run("burned is never pending", func(t *testing.T) {
		old := now.Add(-10000 * time.Hour)
		srs := SrsState{Stage: StageBurned, LastReview: &old, Level: 1, Passed: true}
		assert.False(t, srs.IsPending(now))
	})

	t.Run("stage one comes due after four hours", func(t *testing.T) {
		last := now.Add(-4 * time.Hour)
		srs := SrsState{Stage: 1, LastReview: &last, Level: 1}
		assert.True(t, srs.IsPending(now))

		last = now.Add(-3 * time.Hour)
		srs.LastReview = &last
		assert.False(t, srs.IsPending(now))
	})
}

func TestClassificationLevelGate(t *testing.T) {
	lesson := SrsState{Stage: 0, Level: 12}
	review := SrsState{Stage: 3, Level: 12}

	assert.True(t, lesson.IsLesson(0), "zero gate always eligible")
	assert.False(t, lesson.IsLesson(11))
	assert.True(t, lesson.IsLesson(12))
	assert.False(t, lesson.IsReview(0), "lessons are not reviews")

	assert.True(t, review.IsReview(0))
	assert.False(t, review.IsReview(5))
	assert.True(t, review.IsReview(30))
	assert.False(t, review.IsLesson(30))
}

func TestGetBroadLevel(t *testing.T) {
	want := map[int]BroadLevel{
		0: BroadLesson,
		1: BroadApprentice, 2: BroadApprentice, 3: BroadApprentice, 4: BroadApprentice,
		5: BroadGuru, 6: BroadGuru,
		7: BroadMaster,
		8: BroadEnlightened,
		9: BroadBurned,
	}
	for stage, band := range want {
		srs := SrsState{Stage: stage, Level: 1}
		assert.Equal(t, band, srs.GetBroadLevel(), "stage %d", stage)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&SrsState{Stage: 9, Level: 3}).Validate())
	assert.Error(t, (&SrsState{Stage: 10, Level: 3}).Validate())
	assert.Error(t, (&SrsState{Stage: -1, Level: 3}).Validate())
	assert.Error(t, (&SrsState{Stage: 2, Level: -1}).Validate())
}
