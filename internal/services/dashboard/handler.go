// Package dashboard serves the cook side: admin sign-in, the live order board,
// completion, purge and menu availability.
package dashboard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"foodstall/internal/auth"
	"foodstall/internal/catalog"
	"foodstall/internal/logger"
	"foodstall/internal/models"
	"foodstall/internal/orders"
	"foodstall/internal/views"
	"foodstall/internal/web"
)

// SessionCookie carries the admin token for browser clients.
const SessionCookie = "foodstall_admin"

type ctxKey int

const userKey ctxKey = iota

// Handler handles HTTP requests for the cook dashboard
type Handler struct {
	auth      *auth.Service
	orders    *orders.Store
	lifecycle *orders.Lifecycle
	catalog   *catalog.Catalog
	logger    *logger.Logger
	now       func() time.Time
}

// NewHandler creates a new dashboard handler
func NewHandler(authService *auth.Service, store *orders.Store, lifecycle *orders.Lifecycle, cat *catalog.Catalog, log *logger.Logger) *Handler {
	return &Handler{
		auth:      authService,
		orders:    store,
		lifecycle: lifecycle,
		catalog:   cat,
		logger:    log,
		now:       time.Now,
	}
}

// Routes registers the dashboard endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/admin", h.Dashboard)
	r.Get("/admin/login", h.LoginPage)

	r.Post("/api/admin/login", h.Login)
	r.Post("/api/admin/logout", h.Logout)
	r.Get("/api/admin/me", h.Me)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/api/admin/orders", h.Orders)
		r.Get("/api/admin/orders/ws", h.OrdersFeed)
		r.Post("/api/admin/orders/{id}/complete", h.Complete)
		r.Delete("/api/admin/orders/completed", h.DeleteCompleted)
		r.Put("/api/admin/menu/{id}/availability", h.SetAvailability)
	})
}

// RequireAdmin rejects requests without a live admin session
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.CurrentUser(r.Context(), sessionToken(r))
		if err != nil {
			web.WriteError(w, r, h.logger, "session_check_failed", err)
			return
		}
		if user == nil {
			web.WriteError(w, r, h.logger, "unauthorized", &models.AuthError{
				Code:    models.AuthInvalidSession,
				Message: "sign in required",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// UserFrom returns the admin attached by RequireAdmin.
func UserFrom(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}

// Dashboard handles GET /admin. Signed-out visitors go to the login page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), sessionToken(r))
	if err != nil {
		web.WriteError(w, r, h.logger, "session_check_failed", err)
		return
	}
	if user == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	list := h.orders.ListOrEmpty(r.Context())
	web.WriteJSON(w, http.StatusOK, views.NewDashboard(user, list, h.now()))
}

// LoginPage handles GET /admin/login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"login":  "/api/admin/login",
		"fields": []string{"identifier", "password"},
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, h.logger, "login_failed", err)
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		web.WriteError(w, r, h.logger, "login_failed", models.ValidationError{Field: "identifier", Message: "identifier and password are required"})
		return
	}

	session, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Warn("login_failed", "Admin sign-in rejected", web.RequestID(r.Context()), map[string]interface{}{
			"identifier": req.Identifier,
		})
		web.WriteError(w, r, h.logger, "login_failed", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	web.WriteJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		web.WriteError(w, r, h.logger, "logout_failed", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/admin/me. A signed-out caller gets a null user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), sessionToken(r))
	if err != nil {
		web.WriteError(w, r, h.logger, "session_check_failed", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Orders handles GET /api/admin/orders. An unreadable store shows an empty board.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	list := h.orders.ListOrEmpty(r.Context())
	web.WriteJSON(w, http.StatusOK, views.NewDashboard(UserFrom(r.Context()), list, h.now()))
}

// Complete handles POST /api/admin/orders/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	changedBy := ""
	if u := UserFrom(r.Context()); u != nil {
		changedBy = u.Email
	}

	if err := h.lifecycle.Complete(r.Context(), orderID, changedBy); err != nil {
		web.WriteError(w, r, h.logger, "order_complete_failed", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":     orderID,
		"status": models.StatusCompleted,
	})
}

// DeleteCompleted handles DELETE /api/admin/orders/completed. It purges the
// completed orders in the current list with one atomic delete. When the list
// cannot be read there is nothing visible to purge.
func (h *Handler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	list := h.orders.ListOrEmpty(r.Context())
	deleted, err := h.lifecycle.DeleteCompleted(r.Context(), list)
	if err != nil {
		web.WriteError(w, r, h.logger, "orders_purge_failed", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// SetAvailability handles PUT /api/admin/menu/{id}/availability
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, h.logger, "menu_availability_failed", err)
		return
	}
	if req.Available == nil {
		web.WriteError(w, r, h.logger, "menu_availability_failed", models.ValidationError{Field: "available", Message: "is required"})
		return
	}

	itemID := chi.URLParam(r, "id")
	if err := h.catalog.SetAvailability(r.Context(), itemID, *req.Available); err != nil {
		web.WriteError(w, r, h.logger, "menu_availability_failed", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":        itemID,
		"available": *req.Available,
	})
}

// sessionToken reads a Bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
