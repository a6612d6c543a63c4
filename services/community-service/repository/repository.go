package repository

import (
	"context"
	"errors"
	"strings"

	"disaster-prep-community/services/community-service/models"
)

// Error taxonomy surfaced to handlers. Every failure is scoped to the single
// request; handlers map these to HTTP statuses.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidTransition  = errors.New("invalid report status transition")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// AuthenticateUser verifies credentials and returns the account. Unknown
	// email and wrong password both come back as ErrInvalidCredentials so
	// callers cannot tell them apart.
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*models.User, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
	// RoleOf satisfies middleware.RoleResolver so admin gates can re-check
	// the current role on every call.
	RoleOf(userID string) (string, error)
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	Articles(ctx context.Context, limit int) ([]models.Article, error)
	CountArticles(ctx context.Context) (int64, error)
}

type ReportStore interface {
	CreateReport(ctx context.Context, report *models.CommunityReport) error
	ReportByID(ctx context.Context, id string) (*models.CommunityReport, error)
	ReportsByOwner(ctx context.Context, userID string, limit int) ([]models.CommunityReport, error)
	RecentReports(ctx context.Context, limit int) ([]models.CommunityReport, error)
	VerifyReport(ctx context.Context, id, adminID string) (*models.CommunityReport, error)
	ResolveReport(ctx context.Context, id string) (*models.CommunityReport, error)
	SetReportPhoto(ctx context.Context, id, photoURL string) error
}

type ResourceStore interface {
	UpsertResource(ctx context.Context, resource *models.Resource) error
	ResourcesByCategory(ctx context.Context) ([]models.Resource, error)
	RecentResources(ctx context.Context, limit int) ([]models.Resource, error)
}

type PlanStore interface {
	CreatePlan(ctx context.Context, plan *models.EmergencyPlan) error
	PlansByOwner(ctx context.Context, userID string) ([]models.EmergencyPlan, error)
}

type SafetyStore interface {
	CreateSafetyCheck(ctx context.Context, check *models.SafetyCheck) error
	SafetyByOwner(ctx context.Context, userID string) ([]models.SafetyCheck, error)
	LatestSafetyCheck(ctx context.Context, userID string) (*models.SafetyCheck, error)
	RecentSafetyChecks(ctx context.Context, limit int) ([]models.SafetyCheck, error)
}

// Store is the full data-access surface of the community service.
type Store interface {
	UserStore
	ArticleStore
	ReportStore
	ResourceStore
	PlanStore
	SafetyStore
}

// NormalizeEmail lower-cases and trims an email so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUser(user *models.User) error {
	if NormalizeEmail(user.Email) == "" || strings.TrimSpace(user.FullName) == "" || user.PasswordHash == "" {
		return ErrValidation
	}
	return nil
}

func validateReport(report *models.CommunityReport) error {
	if report.UserID == "" || strings.TrimSpace(report.Location) == "" || strings.TrimSpace(report.Description) == "" {
		return ErrValidation
	}
	if !models.DisasterTypes[report.DisasterType] {
		return ErrValidation
	}
	return nil
}

func validateResource(resource *models.Resource) error {
	if strings.TrimSpace(resource.Name) == "" {
		return ErrValidation
	}
	if !models.ResourceCategories[resource.Category] {
		return ErrValidation
	}
	return nil
}

func validatePlan(plan *models.EmergencyPlan) error {
	if plan.UserID == "" {
		return ErrValidation
	}
	if plan.HouseholdMembers < 0 {
		return ErrValidation
	}
	if plan.HouseholdMembers == 0 {
		plan.HouseholdMembers = 1
	}
	return nil
}

func validateSafetyCheck(check *models.SafetyCheck) error {
	if check.UserID == "" || !models.SafetyStatuses[check.Status] {
		return ErrValidation
	}
	return nil
}
