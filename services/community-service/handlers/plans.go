package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"disaster-prep-community/pkg/response"
	"disaster-prep-community/services/community-service/models"
)

// Plans lists the caller's emergency plans and accepts new ones. Plans are
// append-only history; the newest entry is the current plan.
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		plans, err := h.store.PlansByOwner(r.Context(), id.UserID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to fetch plans", err.Error())
			return
		}
		response.Success(w, http.StatusOK, "Plans fetched", plans)

	case http.MethodPost:
		var input struct {
			HouseholdMembers int    `json:"household_members"`
			MeetingPoint     string `json:"meeting_point"`
			EvacuationRoutes string `json:"evacuation_routes"`
			SupplyChecklist  string `json:"supply_checklist"`
			Notes            string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
			return
		}

		plan := models.EmergencyPlan{
			UserID:           id.UserID,
			HouseholdMembers: input.HouseholdMembers,
			MeetingPoint:     strings.TrimSpace(input.MeetingPoint),
			EvacuationRoutes: strings.TrimSpace(input.EvacuationRoutes),
			SupplyChecklist:  strings.TrimSpace(input.SupplyChecklist),
			Notes:            strings.TrimSpace(input.Notes),
		}
		if err := h.store.CreatePlan(r.Context(), &plan); err != nil {
			writeStoreError(w, err)
			return
		}

		log.Printf("[OK] Emergency plan saved - ID: %s", plan.ID)
		response.Success(w, http.StatusCreated, "Emergency plan saved", plan)

	default:
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	}
}
