package handlers

import (
	"errors"
	"net/http"

	"github.com/gorbit99/wics-extension-sub000/cache"
	"github.com/gorbit99/wics-extension-sub000/models"
	"github.com/gorbit99/wics-extension-sub000/queue"
	"github.com/gorbit99/wics-extension-sub000/storage"
	"github.com/gorbit99/wics-extension-sub000/utils"
)

// APIHandler bundles the services the HTTP surface exposes.
type APIHandler struct {
	Repo        *storage.DeckRepository
	Reconciler  *queue.Reconciler
	Subjects    *cache.Collection[models.Subject]
	Assignments *cache.Collection[models.Assignment]
}

func (h *APIHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.Repo.GetAllDecks(r.Context())
	if err != nil {
		http.Error(w, "Failed to load decks", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, decks)
}

func (h *APIHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var requestData struct {
		Name        string `json:"name"`
		Author      string `json:"author"`
		Description string `json:"description"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	deck := &models.Deck{
		Name:        requestData.Name,
		Author:      requestData.Author,
		Description: requestData.Description,
	}
	if err := h.Repo.AddDeck(r.Context(), deck); err != nil {
		switch {
		case errors.Is(err, storage.ErrNameRequired):
			http.Error(w, "Deck name is required", http.StatusBadRequest)
		case errors.Is(err, storage.ErrDeckExists):
			http.Error(w, "A deck with that name already exists", http.StatusConflict)
		default:
			http.Error(w, "Failed to create deck", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, deck)
}

func (h *APIHandler) GetDeckByName(w http.ResponseWriter, r *http.Request) {
	deck, err := h.Repo.GetDeckByName(r.Context(), r.PathValue("deckName"))
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, deck)
}

func (h *APIHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	deck, err := h.Repo.GetDeckByName(r.Context(), r.PathValue("deckName"))
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, deck.GenerateLevelBreakdown())
}

func (h *APIHandler) UpdateDeckByName(w http.ResponseWriter, r *http.Request) {
	deckName := r.PathValue("deckName")

	deck, err := h.Repo.GetDeckByName(r.Context(), deckName)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	var requestData struct {
		Name        *string `json:"name,omitempty"`
		Author      *string `json:"author,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	if requestData.Name != nil {
		deck.Name = *requestData.Name
	}
	if requestData.Author != nil {
		deck.Author = *requestData.Author
	}
	if requestData.Description != nil {
		deck.Description = *requestData.Description
	}

	if err := h.Repo.UpdateDeck(r.Context(), deckName, deck); err != nil {
		switch {
		case errors.Is(err, storage.ErrNameRequired):
			http.Error(w, "Deck name is required", http.StatusBadRequest)
		case errors.Is(err, storage.ErrDeckExists):
			http.Error(w, "A deck with that name already exists", http.StatusConflict)
		case errors.Is(err, storage.ErrDeckNotFound):
			http.Error(w, "Deck not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to update deck", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, deck)
}

func (h *APIHandler) DeleteDeckByName(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteDeck(r.Context(), r.PathValue("deckName")); err != nil {
		if errors.Is(err, storage.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	export, err := h.Repo.ExportDeck(r.Context(), r.PathValue("deckName"))
	if err != nil {
		if errors.Is(err, storage.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to export deck", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, export)
}

func (h *APIHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	var export models.DeckExport
	if err := utils.DecodeJSON(r, &export); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	report, err := h.Repo.ImportDeck(r.Context(), export)
	if err != nil {
		if errors.Is(err, storage.ErrNameRequired) {
			http.Error(w, "Deck name is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to import deck", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, report)
}
