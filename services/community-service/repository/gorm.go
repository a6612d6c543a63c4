package repository

import (
	"context"
	"errors"
	"time"

	"disaster-prep-community/pkg/security"
	"disaster-prep-community/services/community-service/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolationCode is Postgres error class 23505 (unique_violation).
const uniqueViolationCode = "23505"

// isDuplicateKey reports whether err is a unique-constraint violation from
// the driver. The pre-insert lookup catches most duplicates; this catches
// the race where two inserts pass the lookup at the same time.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// GormStore is the Postgres-backed Store. Every operation is a single
// statement (plus the uniqueness pre-check on user creation), so no
// application-level locking is needed.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the schema for all domain entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.CommunityReport{},
		&models.Resource{},
		&models.EmergencyPlan{},
		&models.SafetyCheck{},
	)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := validateUser(user); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *GormStore) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*models.User, error) {
	user, err := s.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if address != "" {
		updates["address"] = address
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.UserByID(ctx, user.ID)
}

func (s *GormStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&users).Error
	return users, err
}

func (s *GormStore) RoleOf(userID string) (string, error) {
	user, err := s.UserByID(context.Background(), userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *GormStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.Title == "" || article.Content == "" {
		return ErrValidation
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(article).Error
}

func (s *GormStore) Articles(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	q := s.db.WithContext(ctx).Order("published_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&articles).Error
	return articles, err
}

func (s *GormStore) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).Count(&count).Error
	return count, err
}

func (s *GormStore) CreateReport(ctx context.Context, report *models.CommunityReport) error {
	if err := validateReport(report); err != nil {
		return err
	}
	report.Status = models.ReportPending
	report.VerifiedByAdminID = nil
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *GormStore) ReportByID(ctx context.Context, id string) (*models.CommunityReport, error) {
	var report models.CommunityReport
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormStore) ReportsByOwner(ctx context.Context, userID string, limit int) ([]models.CommunityReport, error) {
	var reports []models.CommunityReport
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reports).Error
	return reports, err
}

func (s *GormStore) RecentReports(ctx context.Context, limit int) ([]models.CommunityReport, error) {
	var reports []models.CommunityReport
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reports).Error
	return reports, err
}

func (s *GormStore) VerifyReport(ctx context.Context, id, adminID string) (*models.CommunityReport, error) {
	// Guard and update in one statement so two concurrent verifies cannot
	// both pass the pending check.
	result := s.db.WithContext(ctx).Model(&models.CommunityReport{}).
		Where("id = ? AND status = ?", id, models.ReportPending).
		Updates(map[string]interface{}{
			"status":               models.ReportVerified,
			"verified_by_admin_id": adminID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.ReportByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return s.ReportByID(ctx, id)
}

func (s *GormStore) ResolveReport(ctx context.Context, id string) (*models.CommunityReport, error) {
	result := s.db.WithContext(ctx).Model(&models.CommunityReport{}).
		Where("id = ? AND status = ?", id, models.ReportVerified).
		Update("status", models.ReportResolved)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.ReportByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return s.ReportByID(ctx, id)
}

func (s *GormStore) SetReportPhoto(ctx context.Context, id, photoURL string) error {
	result := s.db.WithContext(ctx).Model(&models.CommunityReport{}).Where("id = ?", id).
		Update("photo_url", photoURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpsertResource(ctx context.Context, resource *models.Resource) error {
	if err := validateResource(resource); err != nil {
		return err
	}
	resource.UpdatedAt = time.Now()

	if resource.ID == "" {
		return s.db.WithContext(ctx).Create(resource).Error
	}

	result := s.db.WithContext(ctx).Model(&models.Resource{}).Where("id = ?", resource.ID).
		Updates(map[string]interface{}{
			"name":       resource.Name,
			"category":   resource.Category,
			"address":    resource.Address,
			"contact":    resource.Contact,
			"latitude":   resource.Latitude,
			"longitude":  resource.Longitude,
			"updated_at": resource.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ResourcesByCategory(ctx context.Context) ([]models.Resource, error) {
	var resources []models.Resource
	err := s.db.WithContext(ctx).Order("category ASC, name ASC").Find(&resources).Error
	return resources, err
}

func (s *GormStore) RecentResources(ctx context.Context, limit int) ([]models.Resource, error) {
	var resources []models.Resource
	q := s.db.WithContext(ctx).Order("updated_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&resources).Error
	return resources, err
}

func (s *GormStore) CreatePlan(ctx context.Context, plan *models.EmergencyPlan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(plan).Error
}

func (s *GormStore) PlansByOwner(ctx context.Context, userID string) ([]models.EmergencyPlan, error) {
	var plans []models.EmergencyPlan
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&plans).Error
	return plans, err
}

func (s *GormStore) CreateSafetyCheck(ctx context.Context, check *models.SafetyCheck) error {
	if err := validateSafetyCheck(check); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(check).Error
}

func (s *GormStore) SafetyByOwner(ctx context.Context, userID string) ([]models.SafetyCheck, error) {
	var checks []models.SafetyCheck
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&checks).Error
	return checks, err
}

func (s *GormStore) LatestSafetyCheck(ctx context.Context, userID string) (*models.SafetyCheck, error) {
	var check models.SafetyCheck
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *GormStore) RecentSafetyChecks(ctx context.Context, limit int) ([]models.SafetyCheck, error) {
	var checks []models.SafetyCheck
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&checks).Error
	return checks, err
}
