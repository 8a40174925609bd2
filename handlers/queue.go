package handlers

import (
	"net/http"

	"github.com/gorbit99/wics-extension-sub000/queue"
	"github.com/gorbit99/wics-extension-sub000/storage"
	"github.com/gorbit99/wics-extension-sub000/utils"
)

// MergeReviews takes the host page's native pending review ids and
// returns them with the custom pending ids interleaved.
func (h *APIHandler) MergeReviews(w http.ResponseWriter, r *http.Request) {
	var requestData struct {
		Queue []int64 `json:"queue"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	merged, err := h.Reconciler.MergeReviewIDs(r.Context(), requestData.Queue)
	if err != nil {
		http.Error(w, "Failed to merge review queue", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"queue": merged})
}

// MergeLessons takes the host page's lesson summary and returns it with
// custom lessons interleaved and category counts adjusted.
func (h *APIHandler) MergeLessons(w http.ResponseWriter, r *http.Request) {
	var native queue.LessonQueue
	if err := utils.DecodeJSON(r, &native); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	merged, err := h.Reconciler.MergeLessons(r.Context(), native)
	if err != nil {
		http.Error(w, "Failed to merge lesson queue", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, merged)
}

// RecordProgress ingests the host page's review outcome feed:
// itemId -> [correctCount, incorrectCount]. Ids the decks do not know
// belong to the host site and are skipped.
func (h *APIHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var feed map[int64][2]int
	if err := utils.DecodeJSON(r, &feed); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	outcomes := make(map[int64]storage.ReviewOutcome, len(feed))
	for id, counts := range feed {
		outcomes[id] = storage.ReviewOutcome{Correct: counts[0], Incorrect: counts[1]}
	}

	if err := h.Reconciler.RecordProgress(r.Context(), outcomes); err != nil {
		http.Error(w, "Failed to record progress", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordLessonCompletions ingests finished lessons from the host page.
func (h *APIHandler) RecordLessonCompletions(w http.ResponseWriter, r *http.Request) {
	var completions []struct {
		ID int64 `json:"id"`
	}
	if err := utils.DecodeJSON(r, &completions); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	ids := make([]int64, 0, len(completions))
	for _, completion := range completions {
		ids = append(ids, completion.ID)
	}

	if err := h.Reconciler.RecordLessonCompletions(r.Context(), ids); err != nil {
		http.Error(w, "Failed to record lesson completions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
