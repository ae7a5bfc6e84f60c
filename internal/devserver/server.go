// Package devserver is a self-contained stub of the dashboard backend:
// login, role-gated aggregates, entity listings and the conversational
// query endpoint, all served from an in-process sqlite store. It exists so
// the client can be exercised end to end without the real deployment.
package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizpulse/bizdash/internal/session"
)

type Server struct {
	store  *Store
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewServer(store *Store, tokens *TokenIssuer, logger *slog.Logger) *Server {
	return &Server{store: store, tokens: tokens, logger: logger}
}

// Router builds the full route tree under /api/v1.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(pr chi.Router) {
			pr.Use(s.authMiddleware)

			pr.Get("/auth/me", s.handleMe)
			pr.Get("/auth/dashboard", s.handlePersonalDashboard)

			pr.Get("/inventory/products", s.handleProducts)
			pr.Get("/inventory/products/low-stock/list", s.handleLowStock)
			pr.Get("/sales/orders", s.handleOrders)
			pr.Get("/finance/expenses", s.handleExpenses)
			pr.Get("/employees/employees", s.handleEmployees)

			pr.Post("/ai/query", s.handleAssistantQuery)

			pr.Group(func(ar chi.Router) {
				ar.Use(s.requireRole(session.RoleAdmin))
				ar.Get("/admin/dashboard", s.handleAdminDashboard)
				ar.Get("/admin/users", s.handleUsers)
			})
		})
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        userProfile `json:"user"`
}

type userProfile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleName string `json:"role_name"`
	IsActive bool   `json:"is_active"`
}

func profileOf(u *UserAccount) userProfile {
	return userProfile{
		Email:    u.Email,
		FullName: u.FullName,
		RoleName: u.RoleName,
		IsActive: u.IsActive,
	}
}

// handleLogin implements the OAuth2 password exchange: form fields
// username (carrying the email) and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		s.writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.store.UserByEmail(email)
	if err != nil {
		s.logger.Error("login lookup failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !user.IsActive {
		s.writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.Email, user.RoleName)
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        profileOf(user),
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// handleRegister creates a Staff account. Elevated roles are assigned by
// an admin afterwards, never self-selected at registration.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	existing, err := s.store.UserByEmail(req.Email)
	if err != nil {
		s.logger.Error("register lookup failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		s.writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &UserAccount{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		RoleName:     string(session.RoleStaff),
		IsActive:     true,
	}
	if err := s.store.CreateUser(user); err != nil {
		s.logger.Error("register create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := s.tokens.Issue(user.Email, user.RoleName)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusCreated, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        profileOf(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	user, err := s.store.UserByEmail(principal.Identity)
	if err != nil || user == nil {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, profileOf(user))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	lowStock := r.URL.Query().Get("low_stock") == "true"
	products, err := s.store.Products(lowStock)
	if err != nil {
		s.logger.Error("product listing failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.Products(true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.Orders(time.Time{})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.Expenses(time.Time{})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.store.Employees()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, employees)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}
