package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"disaster-prep-community/pkg/middleware"
	"disaster-prep-community/pkg/response"
	"disaster-prep-community/pkg/security"
	"disaster-prep-community/services/community-service/models"
	"disaster-prep-community/services/community-service/repository"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// isValidEmail validates email format
func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// isValidPassword checks password length bounds
func isValidPassword(password string) (bool, string) {
	if len(password) < security.MinPasswordLength {
		return false, fmt.Sprintf("Password must be at least %d characters", security.MinPasswordLength)
	}
	if len(password) > 100 {
		return false, "Password too long"
	}
	return true, ""
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("[WARN] Invalid request format")
		response.Error(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}

	if input.Email == "" || input.Password == "" || input.FullName == "" {
		response.Error(w, http.StatusBadRequest, "Email, Password, and Full Name are required", "")
		return
	}

	if !isValidEmail(strings.TrimSpace(input.Email)) {
		response.Error(w, http.StatusBadRequest, "Invalid email format", "")
		return
	}

	if valid, msg := isValidPassword(input.Password); !valid {
		response.Error(w, http.StatusBadRequest, msg, "")
		return
	}

	hashedPassword, err := security.HashPassword(input.Password)
	if err != nil {
		log.Printf("[ERROR] Failed to hash password: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to process registration", "")
		return
	}

	// Role is always "user" here; admin accounts come from seeding or an
	// existing admin, never from self-registration.
	newUser := models.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Role:         models.RoleUser,
	}

	if err := h.store.CreateUser(r.Context(), &newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.Printf("[WARN] Registration attempt with existing email")
		}
		writeStoreError(w, err)
		return
	}

	log.Printf("[OK] User registered - ID: %s", newUser.ID)

	response.Success(w, http.StatusCreated, "Registration successful. Please log in.", map[string]interface{}{
		"id":        newUser.ID,
		"email":     newUser.Email,
		"full_name": newUser.FullName,
		"role":      newUser.Role,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin authenticates against existing accounts with the admin role.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, adminOnly bool) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("[WARN] Invalid login request format")
		response.Error(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}

	if input.Email == "" || input.Password == "" {
		response.Error(w, http.StatusBadRequest, "Email and Password are required", "")
		return
	}

	// The repository collapses unknown email and wrong password into one
	// ErrInvalidCredentials so accounts cannot be enumerated.
	user, err := h.store.AuthenticateUser(r.Context(), input.Email, input.Password)
	if err != nil {
		log.Printf("[WARN] Failed login attempt")
		writeStoreError(w, err)
		return
	}

	if adminOnly && user.Role != models.RoleAdmin {
		log.Printf("[WARN] Admin login attempt by non-admin account")
		response.Error(w, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	token, err := h.sessions.Establish(user.ID, user.Role)
	if err != nil {
		log.Printf("[ERROR] Failed to establish session for user id: %s", user.ID)
		response.Error(w, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}

	log.Printf("[OK] User logged in - ID: %s, Role: %s", user.ID, user.Role)

	response.Success(w, http.StatusOK, "Login successful", map[string]interface{}{
		"id":        user.ID,
		"token":     token,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	h.sessions.Terminate(middleware.BearerToken(r))
	response.Success(w, http.StatusOK, "Logged out", nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve user context", "")
		return
	}

	user, err := h.store.UserByID(r.Context(), id.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User profile fetched", user)
}

// Profile updates the caller's personal information.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	id, ok := identity(r)
	if !ok {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve user context", "")
		return
	}

	var input struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), id.UserID,
		strings.TrimSpace(input.FullName),
		strings.TrimSpace(input.Phone),
		strings.TrimSpace(input.Address),
	)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated", user)
}
