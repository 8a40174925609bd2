package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorbit99/wics-extension-sub000/models"
	"github.com/gorbit99/wics-extension-sub000/storage"
	"github.com/gorbit99/wics-extension-sub000/utils"
)

func itemIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("itemID"), 10, 64)
	return id, err == nil
}

func (h *APIHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	deckName := r.PathValue("deckName")

	var requestData struct {
		Type       models.ItemType `json:"type"`
		Characters string          `json:"characters"`
		English    []string        `json:"english"`
		Kana       []string        `json:"kana"`
		Level      int             `json:"level"`
		// Optional variant fields applied as a patch after creation;
		// character lists in relationship fields are resolved to ids.
		Fields map[string]any `json:"fields"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	var item models.Item
	switch requestData.Type {
	case models.TypeRadical:
		item = models.NewRadical(0, requestData.Characters, requestData.English, requestData.Level)
	case models.TypeKanji:
		item = models.NewKanji(0, requestData.Characters, requestData.English, requestData.Level)
	case models.TypeVocabulary:
		item = models.NewVocabulary(0, requestData.Characters, requestData.English, requestData.Kana, requestData.Level)
	default:
		http.Error(w, "Unknown item type", http.StatusBadRequest)
		return
	}

	// Apply the optional fields before persisting, so a rejected item
	// leaves nothing behind.
	var warnings []string
	if len(requestData.Fields) > 0 {
		resolve := func(characters string, typ models.ItemType) (int64, bool) {
			return h.Repo.ResolveCharacters(r.Context(), characters, typ)
		}
		warnings = item.ApplyPatch(requestData.Fields, resolve)
	}

	item, err := h.Repo.CreateItem(r.Context(), deckName, item)
	if err != nil {
		if errors.Is(err, storage.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"item":     item,
		"warnings": warnings,
	})
}

func (h *APIHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	deck, err := h.Repo.GetDeckByName(r.Context(), r.PathValue("deckName"))
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	item, found := deck.ItemByID(itemID)
	if !found {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *APIHandler) GetItemField(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	deck, err := h.Repo.GetDeckByName(r.Context(), r.PathValue("deckName"))
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	item, found := deck.ItemByID(itemID)
	if !found {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	value, err := item.GetValue(r.PathValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (h *APIHandler) SetItemField(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	var requestData struct {
		Value any `json:"value"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	item, err := h.Repo.SetItemValue(r.Context(), r.PathValue("deckName"), itemID, r.PathValue("field"), requestData.Value)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDeckNotFound):
			http.Error(w, "Deck not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		case errors.Is(err, models.ErrUnknownField), errors.Is(err, storage.ErrInvalidItem):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to update item", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *APIHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	var patch map[string]any
	if err := utils.DecodeJSON(r, &patch); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	item, warnings, err := h.Repo.UpdateItemFields(r.Context(), r.PathValue("deckName"), itemID, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDeckNotFound):
			http.Error(w, "Deck not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrInvalidItem):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to update item", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"item":     item,
		"warnings": warnings,
	})
}

func (h *APIHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	if err := h.Repo.DeleteItem(r.Context(), r.PathValue("deckName"), itemID); err != nil {
		switch {
		case errors.Is(err, storage.ErrDeckNotFound):
			http.Error(w, "Deck not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
