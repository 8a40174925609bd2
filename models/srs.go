package models

import (
	"fmt"
	"time"
)

// SRS stage bounds. Stage 0 is an unlearned lesson, stage 9 is burned
// and absorbing: no transition leaves it.
const (
	StageLesson = 0
	StageGuru   = 5
	StageBurned = 9
)

// BroadLevel is the coarse band a stage falls into, used for progress
// breakdowns.
type BroadLevel string

const (
	BroadLesson      BroadLevel = "lesson"
	BroadApprentice  BroadLevel = "apprentice"
	BroadGuru        BroadLevel = "guru"
	BroadMaster      BroadLevel = "master"
	BroadEnlightened BroadLevel = "enlightened"
	BroadBurned      BroadLevel = "burned"
)

// Hours until an item at a given stage becomes pending again, indexed by
// stage 0-8. Each boundary sits one hour short of the nominal period so a
// review done at e.g. 09:30 comes back at the top of the matching hour.
// Stage 9 has no interval; burned items are never pending.
var stageIntervalHours = [9]int{0, 4, 8, 23, 47, 167, 335, 719, 2879}

// SrsState tracks the spaced-repetition progress of a single item.
type SrsState struct {
	Stage      int        `json:"stage"`
	LastReview *time.Time `json:"lastReview,omitempty"`
	Level      int        `json:"level"`
	Passed     bool       `json:"passed"`
}

// NewSrsState returns the state of a freshly authored item: an unlearned
// lesson unlocking at the given curriculum level.
func NewSrsState(level int) SrsState {
	return SrsState{Stage: StageLesson, Level: level}
}

// Validate rejects states that cannot have been produced by the stage
// machine. Used when rehydrating persisted items.
func (s *SrsState) Validate() error {
	if s.Stage < StageLesson || s.Stage > StageBurned {
		return fmt.Errorf("srs stage %d out of range", s.Stage)
	}
	if s.Level < 0 {
		return fmt.Errorf("srs level %d negative", s.Level)
	}
	return nil
}

// Review applies a review outcome. Zero mistakes promotes one stage and
// marks the item passed once it reaches guru. Any mistakes demote by
// ceil(mistakes/2) steps, doubled past guru, never below stage 1. The
// review timestamp is recorded rounded down to the top of the hour.
// Burned items are absorbing; the call is a no-op.
func (s *SrsState) Review(mistakes int, now time.Time) {
	if s.Stage == StageBurned {
		return
	}

	if mistakes == 0 {
		s.Stage++
		if s.Stage >= StageGuru {
			s.Passed = true
		}
	} else {
		stageChanges := (mistakes + 1) / 2
		adjustmentSteps := 1
		if s.Stage >= StageGuru {
			adjustmentSteps = 2
		}
		newStage := s.Stage - stageChanges*adjustmentSteps
		if newStage < 1 {
			newStage = 1
		}
		s.Stage = newStage
	}

	reviewed := now.Truncate(time.Hour)
	s.LastReview = &reviewed
}

// CompleteLesson moves a lesson item into the review pipeline.
func (s *SrsState) CompleteLesson(now time.Time) {
	s.Review(0, now)
}

// IsPending reports whether the item's current interval has elapsed.
// Never-reviewed items are always pending, burned items never.
func (s *SrsState) IsPending(now time.Time) bool {
	if s.LastReview == nil {
		return true
	}
	if s.Stage == StageBurned {
		return false
	}
	due := s.LastReview.Add(time.Duration(stageIntervalHours[s.Stage]) * time.Hour)
	return !now.Before(due)
}

// IsLesson reports whether the item is waiting to be learned. A non-zero
// gate restricts candidates to items unlocked at or below that level.
func (s *SrsState) IsLesson(gate int) bool {
	return s.Stage == StageLesson && s.levelUnlocked(gate)
}

// IsReview reports whether the item is in the review pipeline (learned
// but not burned), subject to the same level gate as IsLesson.
func (s *SrsState) IsReview(gate int) bool {
	return s.Stage > StageLesson && s.Stage < StageBurned && s.levelUnlocked(gate)
}

func (s *SrsState) levelUnlocked(gate int) bool {
	return gate == 0 || gate >= s.Level
}

// GetBroadLevel classifies the stage into its display band.
func (s *SrsState) GetBroadLevel() BroadLevel {
	switch {
	case s.Stage == StageLesson:
		return BroadLesson
	case s.Stage < StageGuru:
		return BroadApprentice
	case s.Stage <= 6:
		return BroadGuru
	case s.Stage == 7:
		return BroadMaster
	case s.Stage == 8:
		return BroadEnlightened
	default:
		return BroadBurned
	}
}
