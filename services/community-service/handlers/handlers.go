package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"disaster-prep-community/pkg/middleware"
	"disaster-prep-community/pkg/response"
	"disaster-prep-community/pkg/session"
	"disaster-prep-community/services/community-service/repository"
)

const (
	ReportQueue = "report_queue"
	SafetyQueue = "safety_queue"
)

// EventPublisher pushes domain events onto the message bus. A nil publisher
// disables events without failing requests.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, payload interface{}) error
}

// PhotoUploader stores report photo attachments and returns the object URL.
type PhotoUploader interface {
	UploadReportPhoto(ctx context.Context, reportID string, reader io.Reader, size int64, contentType string) (string, error)
}

// Handler connects incoming requests to the repository and the session gate.
type Handler struct {
	store    repository.Store
	sessions *session.Manager
	events   EventPublisher
	photos   PhotoUploader
}

func New(store repository.Store, sessions *session.Manager, events EventPublisher, photos PhotoUploader) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		events:   events,
		photos:   photos,
	}
}

// publish sends an event and logs failures; a dead broker never fails the
// originating request.
func (h *Handler) publish(ctx context.Context, queueName string, payload interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, queueName, payload); err != nil {
		log.Printf("[WARN] Failed to publish event to '%s': %v", queueName, err)
	}
}

// identity returns the resolved caller. Handlers registered behind
// RequireUser/RequireAdmin can rely on it being present.
func identity(r *http.Request) (*session.Identity, bool) {
	return middleware.IdentityFrom(r)
}

// writeStoreError maps the repository error taxonomy onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		response.Error(w, http.StatusConflict, "Email already registered", "")
	case errors.Is(err, repository.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "Invalid report status transition", "")
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Not found", "")
	case errors.Is(err, repository.ErrValidation):
		response.Error(w, http.StatusBadRequest, "Invalid or missing fields", "")
	case errors.Is(err, repository.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password", "")
	default:
		response.Error(w, http.StatusInternalServerError, "Internal error", "")
	}
}
