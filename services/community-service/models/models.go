package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ReportPending  = "pending"
	ReportVerified = "verified"
	ReportResolved = "resolved"
)

const (
	SafetySafe      = "Safe"
	SafetyNeedsHelp = "Needs Help"
	SafetyMissing   = "Missing"
)

var DisasterTypes = map[string]bool{
	"Typhoon":    true,
	"Flood":      true,
	"Earthquake": true,
	"Fire":       true,
	"Landslide":  true,
	"Other":      true,
}

var ResourceCategories = map[string]bool{
	"Hospital":          true,
	"Evacuation Center": true,
	"Hotline":           true,
	"Police":            true,
	"Fire Station":      true,
	"Other":             true,
}

var SafetyStatuses = map[string]bool{
	SafetySafe:      true,
	SafetyNeedsHelp: true,
	SafetyMissing:   true,
}

type User struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         string    `gorm:"default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Article is educational content: guides, tips, contingency plans.
type Article struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Category    string    `json:"category,omitempty"`
	Content     string    `gorm:"not null" json:"content"`
	PublishedAt time.Time `json:"published_at"`
}

// CommunityReport is a hazard report submitted by a user. Status moves
// pending -> verified -> resolved, admin-only, no reverse transitions.
type CommunityReport struct {
	ID                string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            string    `gorm:"not null;index" json:"user_id"`
	DisasterType      string    `gorm:"not null" json:"disaster_type"`
	Location          string    `gorm:"not null" json:"location"`
	Description       string    `gorm:"not null" json:"description"`
	Status            string    `gorm:"default:'pending'" json:"status"`
	VerifiedByAdminID *string   `json:"verified_by_admin_id,omitempty"`
	PhotoURL          string    `json:"photo_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Resource is a directory entry for emergency services. Admin-owned,
// publicly readable.
type Resource struct {
	ID        string   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string   `gorm:"not null" json:"name"`
	Category  string   `json:"category"`
	Address   string   `json:"address,omitempty"`
	Contact   string   `json:"contact,omitempty"`
	Latitude  *float64 `gorm:"type:numeric(9,6)" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:numeric(9,6)" json:"longitude,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmergencyPlan is owner-scoped; a user keeps a history of plans, newest
// entry is the current one.
type EmergencyPlan struct {
	ID               string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           string    `gorm:"not null;index" json:"user_id"`
	HouseholdMembers int       `gorm:"default:1" json:"household_members"`
	MeetingPoint     string    `json:"meeting_point,omitempty"`
	EvacuationRoutes string    `json:"evacuation_routes,omitempty"`
	SupplyChecklist  string    `json:"supply_checklist,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SafetyCheck is an append-only status history entry; the most recent row
// is the user's current status.
type SafetyCheck struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Status    string    `gorm:"not null" json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportEvent is published to the report queue when a report is created or
// changes status.
type ReportEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DisasterType string    `json:"disaster_type"`
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// SafetyEvent is published to the safety queue for check-ins that need
// attention (Needs Help, Missing).
type SafetyEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
