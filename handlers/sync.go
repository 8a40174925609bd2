package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorbit99/wics-extension-sub000/utils"
)

// GetSubjects resolves catalog subjects by id, or lists everything the
// mirror knows about when no ids are given.
func (h *APIHandler) GetSubjects(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				http.Error(w, "Invalid subject id", http.StatusBadRequest)
				return
			}
			ids = append(ids, id)
		}
	}

	subjects, err := h.Subjects.FetchItems(r.Context(), ids)
	if err != nil {
		http.Error(w, "Failed to fetch subjects", http.StatusBadGateway)
		return
	}
	utils.WriteJSON(w, http.StatusOK, subjects)
}

// SyncCaches forces a refresh of the subject and assignment mirrors and
// reports how many entries each one holds.
func (h *APIHandler) SyncCaches(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.Subjects.FetchItems(r.Context(), nil)
	if err != nil {
		http.Error(w, "Failed to sync subjects", http.StatusBadGateway)
		return
	}
	assignments, err := h.Assignments.FetchItems(r.Context(), nil)
	if err != nil {
		http.Error(w, "Failed to sync assignments", http.StatusBadGateway)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{
		"subjects":    len(subjects),
		"assignments": len(assignments),
	})
}
