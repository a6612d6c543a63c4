package handlers

import (
	"errors"
	"net/http"

	"disaster-prep-community/pkg/response"
	"disaster-prep-community/services/community-service/repository"
)

// Index is the public landing page payload: latest articles and resources.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	articles, err := h.store.Articles(r.Context(), 3)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch articles", err.Error())
		return
	}
	resources, err := h.store.RecentResources(r.Context(), 5)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch resources", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "Landing data fetched", map[string]interface{}{
		"articles":  articles,
		"resources": resources,
	})
}

// Home is the logged-in dashboard: recent reports, current safety status,
// and the newest emergency plan.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	user, err := h.store.UserByID(r.Context(), id.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	reports, err := h.store.ReportsByOwner(r.Context(), id.UserID, 5)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch reports", err.Error())
		return
	}

	payload := map[string]interface{}{
		"user":    user,
		"reports": reports,
	}

	if safety, err := h.store.LatestSafetyCheck(r.Context(), id.UserID); err == nil {
		payload["safety"] = safety
	} else if !errors.Is(err, repository.ErrNotFound) {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch safety status", err.Error())
		return
	}

	plans, err := h.store.PlansByOwner(r.Context(), id.UserID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch plans", err.Error())
		return
	}
	if len(plans) > 0 {
		payload["plan"] = plans[0]
	}

	response.Success(w, http.StatusOK, "Dashboard fetched", payload)
}

// Articles is the public educational hub listing.
func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	articles, err := h.store.Articles(r.Context(), 0)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch articles", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "Articles fetched", articles)
}

// Resources is the public resource directory, grouped by category.
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	resources, err := h.store.ResourcesByCategory(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch resources", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "Resources fetched", resources)
}
