package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"disaster-prep-community/pkg/security"
	"disaster-prep-community/services/community-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: "$2a$10$notarealhashbutgoodenough",
		FullName:     "Test User",
	}
}

func newReport(userID string) *models.CommunityReport {
	return &models.CommunityReport{
		UserID:       userID,
		DisasterType: "Flood",
		Location:     "Main St",
		Description:  "Water rising fast",
	}
}

func TestCreateUserNormalizesAndDefaultsRole(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := newUser("  Alice@Example.COM ")
	require.NoError(t, store.CreateUser(ctx, user))

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDuplicateEmailCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newUser("a@b.com")))

	err := store.CreateUser(ctx, newUser("A@B.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateUserValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	missingName := newUser("x@y.com")
	missingName.FullName = "   "
	assert.ErrorIs(t, store.CreateUser(ctx, missingName), ErrValidation)

	missingEmail := newUser("   ")
	assert.ErrorIs(t, store.CreateUser(ctx, missingEmail), ErrValidation)
}

func TestUserLookupNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.UserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UserByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := newUser("p@q.com")
	require.NoError(t, store.CreateUser(ctx, user))

	updated, err := store.UpdateProfile(ctx, user.ID, "", "555-0101", "")
	require.NoError(t, err)

	assert.Equal(t, "Test User", updated.FullName)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "", updated.Address)
}

func TestRoleOf(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	admin := newUser("admin@b.com")
	admin.Role = models.RoleAdmin
	require.NoError(t, store.CreateUser(ctx, admin))

	role, err := store.RoleOf(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	_, err = store.RoleOf("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	report := newReport("user-1")
	report.Status = "resolved" // callers cannot pick a status
	require.NoError(t, store.CreateReport(ctx, report))
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Nil(t, report.VerifiedByAdminID)

	verified, err := store.VerifyReport(ctx, report.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportVerified, verified.Status)
	require.NotNil(t, verified.VerifiedByAdminID)
	assert.Equal(t, "admin-1", *verified.VerifiedByAdminID)

	resolved, err := store.ResolveReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, resolved.Status)
}

func TestReportTransitionsAreStrict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	report := newReport("user-1")
	require.NoError(t, store.CreateReport(ctx, report))

	// resolve before verify
	_, err := store.ResolveReport(ctx, report.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = store.VerifyReport(ctx, report.ID, "admin-1")
	require.NoError(t, err)

	// verify twice
	_, err = store.VerifyReport(ctx, report.ID, "admin-2")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = store.ResolveReport(ctx, report.ID)
	require.NoError(t, err)

	// resolve twice
	_, err = store.ResolveReport(ctx, report.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = store.VerifyReport(ctx, "missing", "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	report := newReport("user-1")
	require.NoError(t, store.CreateReport(ctx, report))

	const admins = 8
	var wg sync.WaitGroup
	var wins, rejections int32
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.VerifyReport(ctx, report.ID, fmt.Sprintf("admin-%d", n))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case err == ErrInvalidTransition:
				atomic.AddInt32(&rejections, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	assert.EqualValues(t, admins-1, rejections)

	got, err := store.ReportByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportVerified, got.Status)
	assert.NotNil(t, got.VerifiedByAdminID)
}

func TestAuthenticateUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	hash, err := security.HashPassword("secret1")
	require.NoError(t, err)
	user := &models.User{Email: "alice@example.com", PasswordHash: hash, FullName: "Alice"}
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.AuthenticateUser(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = store.AuthenticateUser(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown email is indistinguishable from a wrong password
	_, err = store.AuthenticateUser(ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestReportValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	badType := newReport("user-1")
	badType.DisasterType = "Meteor"
	assert.ErrorIs(t, store.CreateReport(ctx, badType), ErrValidation)

	noLocation := newReport("user-1")
	noLocation.Location = "  "
	assert.ErrorIs(t, store.CreateReport(ctx, noLocation), ErrValidation)
}

func TestReportsByOwnerNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		r := newReport("alice")
		r.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateReport(ctx, r))
	}
	other := newReport("bob")
	require.NoError(t, store.CreateReport(ctx, other))

	reports, err := store.ReportsByOwner(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.Equal(t, "alice", r.UserID)
	}
	assert.True(t, reports[0].CreatedAt.After(reports[1].CreatedAt))
	assert.True(t, reports[1].CreatedAt.After(reports[2].CreatedAt))

	limited, err := store.ReportsByOwner(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSetReportPhoto(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	report := newReport("user-1")
	require.NoError(t, store.CreateReport(ctx, report))

	require.NoError(t, store.SetReportPhoto(ctx, report.ID, "http://objects/report-photos/x.jpg"))
	got, err := store.ReportByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://objects/report-photos/x.jpg", got.PhotoURL)

	assert.ErrorIs(t, store.SetReportPhoto(ctx, "missing", "u"), ErrNotFound)
}

func TestUpsertResource(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	res := &models.Resource{Name: "City General", Category: "Hospital"}
	require.NoError(t, store.UpsertResource(ctx, res))
	require.NotEmpty(t, res.ID)
	firstUpdate := res.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	res.Contact = "555-0000"
	require.NoError(t, store.UpsertResource(ctx, res))
	assert.True(t, res.UpdatedAt.After(firstUpdate))

	all, err := store.ResourcesByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "555-0000", all[0].Contact)

	missing := &models.Resource{ID: "nope", Name: "X", Category: "Hotline"}
	assert.ErrorIs(t, store.UpsertResource(ctx, missing), ErrNotFound)

	badCategory := &models.Resource{Name: "X", Category: "Casino"}
	assert.ErrorIs(t, store.UpsertResource(ctx, badCategory), ErrValidation)
}

func TestResourcesByCategoryOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, r := range []models.Resource{
		{Name: "Station 3", Category: "Police"},
		{Name: "City General", Category: "Hospital"},
		{Name: "Barangay Hall", Category: "Evacuation Center"},
		{Name: "Andres Clinic", Category: "Hospital"},
	} {
		entry := r
		require.NoError(t, store.UpsertResource(ctx, &entry))
	}

	resources, err := store.ResourcesByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 4)

	assert.Equal(t, "Evacuation Center", resources[0].Category)
	assert.Equal(t, "Andres Clinic", resources[1].Name)
	assert.Equal(t, "City General", resources[2].Name)
	assert.Equal(t, "Police", resources[3].Category)
}

func TestPlansOwnerScopedAndDefaulted(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	plan := &models.EmergencyPlan{UserID: "alice", MeetingPoint: "Plaza"}
	require.NoError(t, store.CreatePlan(ctx, plan))
	assert.Equal(t, 1, plan.HouseholdMembers)

	negative := &models.EmergencyPlan{UserID: "alice", HouseholdMembers: -1}
	assert.ErrorIs(t, store.CreatePlan(ctx, negative), ErrValidation)

	later := &models.EmergencyPlan{UserID: "alice", HouseholdMembers: 4, CreatedAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreatePlan(ctx, later))

	plans, err := store.PlansByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 4, plans[0].HouseholdMembers)

	none, err := store.PlansByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSafetyChecksAppendOnlyLatest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &models.SafetyCheck{UserID: "alice", Status: models.SafetySafe}
	require.NoError(t, store.CreateSafetyCheck(ctx, first))

	second := &models.SafetyCheck{
		UserID:    "alice",
		Status:    models.SafetyNeedsHelp,
		Note:      "trapped upstairs",
		CreatedAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, store.CreateSafetyCheck(ctx, second))

	latest, err := store.LatestSafetyCheck(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SafetyNeedsHelp, latest.Status)

	history, err := store.SafetyByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = store.LatestSafetyCheck(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	bad := &models.SafetyCheck{UserID: "alice", Status: "Fine"}
	assert.ErrorIs(t, store.CreateSafetyCheck(ctx, bad), ErrValidation)
}

func TestNewestFirstIDTieBreak(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	at := time.Now()
	a := newReport("alice")
	a.ID, a.CreatedAt = "aaa", at
	b := newReport("alice")
	b.ID, b.CreatedAt = "bbb", at
	require.NoError(t, store.CreateReport(ctx, a))
	require.NoError(t, store.CreateReport(ctx, b))

	reports, err := store.RecentReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "bbb", reports[0].ID)
	assert.Equal(t, "aaa", reports[1].ID)
}
