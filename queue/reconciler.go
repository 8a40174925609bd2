// Package queue merges custom pending items into the host site's native
// review and lesson queues and feeds outcome data back into the decks.
package queue

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/gorbit99/wics-extension-sub000/models"
	"github.com/gorbit99/wics-extension-sub000/storage"
)

// Placement is where custom items land relative to the native queue.
type Placement string

const (
	PlacementFront  Placement = "front"
	PlacementBack   Placement = "back"
	PlacementRandom Placement = "random"
)

// ParsePlacement maps a config string onto a placement, defaulting to
// back.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case PlacementFront, PlacementBack, PlacementRandom:
		return Placement(s), nil
	case "":
		return PlacementBack, nil
	default:
		return "", fmt.Errorf("unknown placement %q", s)
	}
}

// LessonQueue is the host's lesson summary: the queue itself plus the
// per-category counts the page displays. The counts must stay consistent
// with the queue's actual content after merging.
type LessonQueue struct {
	Queue           []models.LessonPayload `json:"queue"`
	RadicalCount    int                    `json:"radicalCount"`
	KanjiCount      int                    `json:"kanjiCount"`
	VocabularyCount int                    `json:"vocabularyCount"`
}

// Reconciler merges custom pending work into native queues according to
// the configured placement, gated by the user's curriculum level.
type Reconciler struct {
	repo      *storage.DeckRepository
	placement Placement
	gate      int
	intn      func(n int) int
}

func NewReconciler(repo *storage.DeckRepository, placement Placement, gate int) *Reconciler {
	return &Reconciler{
		repo:      repo,
		placement: placement,
		gate:      gate,
		intn:      rand.Intn,
	}
}

// MergeReviewIDs interleaves the custom pending review ids into the
// native id list.
func (r *Reconciler) MergeReviewIDs(ctx context.Context, native []int64) ([]int64, error) {
	custom, err := r.repo.GetPendingReviewIDs(ctx, r.gate)
	if err != nil {
		return nil, err
	}
	return merge(native, custom, r.placement, r.intn), nil
}

// MergeLessons interleaves the custom pending lessons into the native
// lesson queue and bumps the per-category counts to match.
func (r *Reconciler) MergeLessons(ctx context.Context, native LessonQueue) (LessonQueue, error) {
	custom, err := r.repo.GetPendingLessons(ctx, r.gate)
	if err != nil {
		return LessonQueue{}, err
	}

	native.Queue = merge(native.Queue, custom, r.placement, r.intn)
	for _, lesson := range custom {
		switch lesson.Type {
		case "Radical":
			native.RadicalCount++
		case "Kanji":
			native.KanjiCount++
		case "Vocabulary":
			native.VocabularyCount++
		}
	}
	return native, nil
}

// RecordProgress forwards review outcomes to the decks. Ids belonging to
// the host site fall through silently.
func (r *Reconciler) RecordProgress(ctx context.Context, outcomes map[int64]storage.ReviewOutcome) error {
	return r.repo.HandleProgressMade(ctx, outcomes)
}

// RecordLessonCompletions forwards finished lessons to the decks.
func (r *Reconciler) RecordLessonCompletions(ctx context.Context, ids []int64) error {
	return r.repo.HandleLessonCompletion(ctx, ids)
}

// merge applies the placement policy. Random placement inserts each
// custom element one at a time, left to right, at a uniformly random
// position in the growing result. That is order-dependent and not a
// uniform shuffle of the final list; the behavior is load-bearing and
// kept as is.
func merge[T any](native, custom []T, placement Placement, intn func(int) int) []T {
	switch placement {
	case PlacementFront:
		out := make([]T, 0, len(native)+len(custom))
		out = append(out, custom...)
		return append(out, native...)

	case PlacementRandom:
		out := make([]T, 0, len(native)+len(custom))
		out = append(out, native...)
		for _, element := range custom {
			pos := intn(len(out) + 1)
			out = append(out, element)
			copy(out[pos+1:], out[pos:])
			out[pos] = element
		}
		return out

	default: // back
		out := make([]T, 0, len(native)+len(custom))
		out = append(out, native...)
		return append(out, custom...)
	}
}
