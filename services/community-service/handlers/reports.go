package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"disaster-prep-community/pkg/response"
	"disaster-prep-community/services/community-service/models"
)

// Reports serves the caller's own reports and accepts new submissions.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.myReports(w, r)
	case http.MethodPost:
		h.createReport(w, r)
	default:
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	}
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var input struct {
		DisasterType string `json:"disaster_type"`
		Location     string `json:"location"`
		Description  string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	// Owner is always the resolved identity, never a field of the payload.
	newReport := models.CommunityReport{
		UserID:       id.UserID,
		DisasterType: input.DisasterType,
		Location:     strings.TrimSpace(input.Location),
		Description:  strings.TrimSpace(input.Description),
	}

	if err := h.store.CreateReport(r.Context(), &newReport); err != nil {
		writeStoreError(w, err)
		return
	}

	log.Printf("[OK] Report saved - ID: %s, Type: %s", newReport.ID, newReport.DisasterType)

	h.publish(r.Context(), ReportQueue, models.ReportEvent{
		ID:           newReport.ID,
		UserID:       newReport.UserID,
		DisasterType: newReport.DisasterType,
		Location:     newReport.Location,
		Status:       newReport.Status,
		CreatedAt:    newReport.CreatedAt,
	})

	response.Success(w, http.StatusCreated, "Report submitted", newReport)
}

func (h *Handler) myReports(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	reports, err := h.store.ReportsByOwner(r.Context(), id.UserID, 0)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch reports", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "User reports fetched successfully", reports)
}

// ReportPhoto handles POST /api/reports/{id}/photo: a multipart photo
// attachment stored in object storage, owner-only.
func (h *Handler) ReportPhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	reportID := strings.TrimSuffix(rest, "/photo")
	if reportID == "" || reportID == rest {
		response.Error(w, http.StatusNotFound, "Not found", "")
		return
	}

	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	if h.photos == nil {
		response.Error(w, http.StatusServiceUnavailable, "Photo storage not configured", "")
		return
	}

	report, err := h.store.ReportByID(r.Context(), reportID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report.UserID != id.UserID {
		response.Error(w, http.StatusForbidden, "Forbidden", "Not the report owner")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing photo file", "")
		return
	}
	defer file.Close()

	url, err := h.photos.UploadReportPhoto(r.Context(), report.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[ERROR] Failed to upload report photo: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to upload photo", "")
		return
	}

	if err := h.store.SetReportPhoto(r.Context(), report.ID, url); err != nil {
		writeStoreError(w, err)
		return
	}

	log.Printf("[OK] Photo attached - Report: %s", report.ID)
	response.Success(w, http.StatusOK, "Photo uploaded", map[string]string{"photo_url": url})
}
