package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorbit99/wics-extension-sub000/middleware"
	"github.com/gorbit99/wics-extension-sub000/utils"
)

// TokenHandler exchanges the shared secret for a session token the
// extension attaches to mutating requests.
type TokenHandler struct {
	Secret string
}

func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var requestData struct {
		Secret string `json:"secret"`
	}
	if err := utils.DecodeJSON(r, &requestData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(requestData.Secret), []byte(h.Secret)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := middleware.CreateToken(h.Secret)
	if err != nil {
		http.Error(w, "Failed to create token", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
