package handlers

import (
	"net/http"

	"disaster-prep-community/pkg/middleware"
	"disaster-prep-community/pkg/session"
)

// Routes builds the service mux with the route policy applied: public
// endpoints, logged-in endpoints behind RequireUser, and moderation
// endpoints behind RequireAdmin (role re-checked against the user store).
// The returned handler resolves session tokens for every request.
func Routes(h *Handler, sessions *session.Manager, roles middleware.RoleResolver) http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("/api/auth/register", h.Register)
	mux.HandleFunc("/api/auth/login", h.Login)
	mux.HandleFunc("/api/auth/admin/login", h.AdminLogin)
	mux.HandleFunc("/api/index", h.Index)
	mux.HandleFunc("/api/articles", h.Articles)
	mux.HandleFunc("/api/resources", h.Resources)

	// Logged-in
	mux.Handle("/api/auth/logout", middleware.RequireUser(http.HandlerFunc(h.Logout)))
	mux.Handle("/api/auth/me", middleware.RequireUser(http.HandlerFunc(h.Me)))
	mux.Handle("/api/home", middleware.RequireUser(http.HandlerFunc(h.Home)))
	mux.Handle("/api/profile", middleware.RequireUser(http.HandlerFunc(h.Profile)))
	mux.Handle("/api/reports", middleware.RequireUser(http.HandlerFunc(h.Reports)))
	mux.Handle("/api/reports/", middleware.RequireUser(http.HandlerFunc(h.ReportPhoto)))
	mux.Handle("/api/plans", middleware.RequireUser(http.HandlerFunc(h.Plans)))
	mux.Handle("/api/safety", middleware.RequireUser(http.HandlerFunc(h.Safety)))

	// Admin
	mux.Handle("/admin/dashboard", middleware.RequireAdmin(roles, http.HandlerFunc(h.AdminDashboard)))
	mux.Handle("/admin/resources", middleware.RequireAdmin(roles, http.HandlerFunc(h.AdminResources)))
	mux.Handle("/admin/reports/", middleware.RequireAdmin(roles, http.HandlerFunc(h.AdminReportAction)))

	return middleware.Auth(sessions, mux)
}
