package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"disaster-prep-community/pkg/response"
	"disaster-prep-community/services/community-service/models"
)

// AdminDashboard aggregates recent activity for moderation.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	reports, err := h.store.RecentReports(r.Context(), 10)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch reports", err.Error())
		return
	}
	users, err := h.store.RecentUsers(r.Context(), 10)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch users", err.Error())
		return
	}
	safety, err := h.store.RecentSafetyChecks(r.Context(), 10)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch safety checks", err.Error())
		return
	}
	resources, err := h.store.RecentResources(r.Context(), 10)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch resources", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "Dashboard fetched", map[string]interface{}{
		"recent_reports": reports,
		"recent_users":   users,
		"recent_safety":  safety,
		"resources":      resources,
	})
}

// AdminResources creates or updates a resource directory entry.
func (h *Handler) AdminResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var input struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Category  string   `json:"category"`
		Address   string   `json:"address"`
		Contact   string   `json:"contact"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resource := models.Resource{
		ID:        input.ID,
		Name:      strings.TrimSpace(input.Name),
		Category:  input.Category,
		Address:   strings.TrimSpace(input.Address),
		Contact:   strings.TrimSpace(input.Contact),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := h.store.UpsertResource(r.Context(), &resource); err != nil {
		writeStoreError(w, err)
		return
	}

	log.Printf("[OK] Resource saved - ID: %s, Category: %s", resource.ID, resource.Category)
	response.Success(w, http.StatusOK, "Resource saved", resource)
}

// AdminReportAction handles POST /admin/reports/{id}/verify and
// POST /admin/reports/{id}/resolve.
func (h *Handler) AdminReportAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/admin/reports/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		response.Error(w, http.StatusNotFound, "Not found", "")
		return
	}
	reportID, action := parts[0], parts[1]

	var report *models.CommunityReport
	var err error

	switch action {
	case "verify":
		report, err = h.store.VerifyReport(r.Context(), reportID, id.UserID)
	case "resolve":
		report, err = h.store.ResolveReport(r.Context(), reportID)
	default:
		response.Error(w, http.StatusNotFound, "Not found", "")
		return
	}

	if err != nil {
		writeStoreError(w, err)
		return
	}

	log.Printf("[OK] Report %s - ID: %s, Admin: %s", report.Status, report.ID, id.UserID)

	h.publish(r.Context(), ReportQueue, models.ReportEvent{
		ID:           report.ID,
		UserID:       report.UserID,
		DisasterType: report.DisasterType,
		Location:     report.Location,
		Status:       report.Status,
		CreatedAt:    report.CreatedAt,
	})

	response.Success(w, http.StatusOK, "Report "+report.Status, report)
}
