package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"disaster-prep-community/pkg/security"
	"disaster-prep-community/services/community-service/models"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the test suite
// and mirrors the semantics of GormStore exactly: uniqueness, ordering,
// transitions, and the error taxonomy.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []models.User
	articles  []models.Article
	reports   []models.CommunityReport
	resources []models.Resource
	plans     []models.EmergencyPlan
	safety    []models.SafetyCheck
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if at.IsZero() {
		*at = time.Now()
	}
}

// newestFirst orders by instant descending with id descending as the stable
// tie-break, matching the repository ordering convention.
func newestFirst(at func(i int) time.Time, id func(i int) string) func(i, j int) bool {
	return func(i, j int) bool {
		ti, tj := at(i), at(j)
		if ti.Equal(tj) {
			return id(i) > id(j)
		}
		return ti.After(tj)
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := validateUser(user); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	stamp(&user.ID, &user.CreatedAt)
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if fullName != "" {
			s.users[i].FullName = fullName
		}
		if phone != "" {
			s.users[i].Phone = phone
		}
		if address != "" {
			s.users[i].Address = address
		}
		u := s.users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := append([]models.User(nil), s.users...)
	sort.SliceStable(users, newestFirst(
		func(i int) time.Time { return users[i].CreatedAt },
		func(i int) string { return users[i].ID },
	))
	return truncate(users, limit), nil
}

func (s *MemoryStore) RoleOf(userID string) (string, error) {
	user, err := s.UserByID(context.Background(), userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *MemoryStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.Title == "" || article.Content == "" {
		return ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&article.ID, &article.PublishedAt)
	s.articles = append(s.articles, *article)
	return nil
}

func (s *MemoryStore) Articles(ctx context.Context, limit int) ([]models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := append([]models.Article(nil), s.articles...)
	sort.SliceStable(articles, newestFirst(
		func(i int) time.Time { return articles[i].PublishedAt },
		func(i int) string { return articles[i].ID },
	))
	return truncate(articles, limit), nil
}

func (s *MemoryStore) CountArticles(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.articles)), nil
}

func (s *MemoryStore) CreateReport(ctx context.Context, report *models.CommunityReport) error {
	if err := validateReport(report); err != nil {
		return err
	}
	report.Status = models.ReportPending
	report.VerifiedByAdminID = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&report.ID, &report.CreatedAt)
	s.reports = append(s.reports, *report)
	return nil
}

func (s *MemoryStore) ReportByID(ctx context.Context, id string) (*models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, report := range s.reports {
		if report.ID == id {
			r := report
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ReportsByOwner(ctx context.Context, userID string, limit int) ([]models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []models.CommunityReport
	for _, report := range s.reports {
		if report.UserID == userID {
			reports = append(reports, report)
		}
	}
	sort.SliceStable(reports, newestFirst(
		func(i int) time.Time { return reports[i].CreatedAt },
		func(i int) string { return reports[i].ID },
	))
	return truncate(reports, limit), nil
}

func (s *MemoryStore) RecentReports(ctx context.Context, limit int) ([]models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := append([]models.CommunityReport(nil), s.reports...)
	sort.SliceStable(reports, newestFirst(
		func(i int) time.Time { return reports[i].CreatedAt },
		func(i int) string { return reports[i].ID },
	))
	return truncate(reports, limit), nil
}

func (s *MemoryStore) VerifyReport(ctx context.Context, id, adminID string) (*models.CommunityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID != id {
			continue
		}
		if s.reports[i].Status != models.ReportPending {
			return nil, ErrInvalidTransition
		}
		s.reports[i].Status = models.ReportVerified
		verifier := adminID
		s.reports[i].VerifiedByAdminID = &verifier
		r := s.reports[i]
		return &r, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ResolveReport(ctx context.Context, id string) (*models.CommunityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID != id {
			continue
		}
		if s.reports[i].Status != models.ReportVerified {
			return nil, ErrInvalidTransition
		}
		s.reports[i].Status = models.ReportResolved
		r := s.reports[i]
		return &r, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SetReportPhoto(ctx context.Context, id, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			s.reports[i].PhotoURL = photoURL
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) UpsertResource(ctx context.Context, resource *models.Resource) error {
	if err := validateResource(resource); err != nil {
		return err
	}
	resource.UpdatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if resource.ID != "" {
		for i := range s.resources {
			if s.resources[i].ID == resource.ID {
				s.resources[i] = *resource
				return nil
			}
		}
		return ErrNotFound
	}

	resource.ID = uuid.New().String()
	s.resources = append(s.resources, *resource)
	return nil
}

func (s *MemoryStore) ResourcesByCategory(ctx context.Context) ([]models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := append([]models.Resource(nil), s.resources...)
	sort.SliceStable(resources, func(i, j int) bool {
		if resources[i].Category == resources[j].Category {
			return resources[i].Name < resources[j].Name
		}
		return resources[i].Category < resources[j].Category
	})
	return resources, nil
}

func (s *MemoryStore) RecentResources(ctx context.Context, limit int) ([]models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := append([]models.Resource(nil), s.resources...)
	sort.SliceStable(resources, newestFirst(
		func(i int) time.Time { return resources[i].UpdatedAt },
		func(i int) string { return resources[i].ID },
	))
	return truncate(resources, limit), nil
}

func (s *MemoryStore) CreatePlan(ctx context.Context, plan *models.EmergencyPlan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&plan.ID, &plan.CreatedAt)
	s.plans = append(s.plans, *plan)
	return nil
}

func (s *MemoryStore) PlansByOwner(ctx context.Context, userID string) ([]models.EmergencyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var plans []models.EmergencyPlan
	for _, plan := range s.plans {
		if plan.UserID == userID {
			plans = append(plans, plan)
		}
	}
	sort.SliceStable(plans, newestFirst(
		func(i int) time.Time { return plans[i].CreatedAt },
		func(i int) string { return plans[i].ID },
	))
	return plans, nil
}

func (s *MemoryStore) CreateSafetyCheck(ctx context.Context, check *models.SafetyCheck) error {
	if err := validateSafetyCheck(check); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&check.ID, &check.CreatedAt)
	s.safety = append(s.safety, *check)
	return nil
}

func (s *MemoryStore) SafetyByOwner(ctx context.Context, userID string) ([]models.SafetyCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var checks []models.SafetyCheck
	for _, check := range s.safety {
		if check.UserID == userID {
			checks = append(checks, check)
		}
	}
	sort.SliceStable(checks, newestFirst(
		func(i int) time.Time { return checks[i].CreatedAt },
		func(i int) string { return checks[i].ID },
	))
	return checks, nil
}

func (s *MemoryStore) LatestSafetyCheck(ctx context.Context, userID string) (*models.SafetyCheck, error) {
	checks, err := s.SafetyByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		return nil, ErrNotFound
	}
	latest := checks[0]
	return &latest, nil
}

func (s *MemoryStore) RecentSafetyChecks(ctx context.Context, limit int) ([]models.SafetyCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checks := append([]models.SafetyCheck(nil), s.safety...)
	sort.SliceStable(checks, newestFirst(
		func(i int) time.Time { return checks[i].CreatedAt },
		func(i int) string { return checks[i].ID },
	))
	return truncate(checks, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
