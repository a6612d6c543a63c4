package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"disaster-prep-community/pkg/response"
	"disaster-prep-community/services/community-service/models"
)

// Safety serves the caller's check-in history and logs new status entries.
func (h *Handler) Safety(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		history, err := h.store.SafetyByOwner(r.Context(), id.UserID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to fetch safety history", err.Error())
			return
		}
		response.Success(w, http.StatusOK, "Safety history fetched", history)

	case http.MethodPost:
		var input struct {
			Status string `json:"status"`
			Note   string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
			return
		}

		entry := models.SafetyCheck{
			UserID: id.UserID,
			Status: input.Status,
			Note:   strings.TrimSpace(input.Note),
		}
		if err := h.store.CreateSafetyCheck(r.Context(), &entry); err != nil {
			writeStoreError(w, err)
			return
		}

		log.Printf("[OK] Safety status logged - User: %s, Status: %s", entry.UserID, entry.Status)

		// Only statuses that need attention go onto the bus.
		if entry.Status != models.SafetySafe {
			h.publish(r.Context(), SafetyQueue, models.SafetyEvent{
				ID:        entry.ID,
				UserID:    entry.UserID,
				Status:    entry.Status,
				Note:      entry.Note,
				CreatedAt: entry.CreatedAt,
			})
		}

		response.Success(w, http.StatusCreated, "Safety status updated", entry)

	default:
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	}
}
