package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devialdimp/bank-ledger/internal/auth"
	"github.com/devialdimp/bank-ledger/internal/models"
)

func userFrom(r *http.Request) (*models.User, bool) {
	return auth.UserFromContext(r.Context())
}

// SetupRoutes mounts the API. Registration, login, health, and metrics are
// open; everything else sits behind the bearer-token middleware.
func SetupRoutes(r *mux.Router, h *Handler, restrict func(http.Handler) http.Handler, metricsHandler http.Handler) {
	// Health check (check if API is working)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", metricsHandler).Methods("GET")

	// Auth routes
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(restrict)

	protected.HandleFunc("/auth/authenticate", h.Authenticate).Methods("GET")

	// User routes
	protected.HandleFunc("/users", h.GetUsers).Methods("GET")
	protected.HandleFunc("/users/{id}", h.GetUser).Methods("GET")

	// Account routes
	protected.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	protected.HandleFunc("/accounts", h.GetAccounts).Methods("GET")
	protected.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
	protected.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PUT")
	protected.HandleFunc("/accounts/{id}", h.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/accounts/{id}/statements", h.GetStatements).Methods("GET")

	// Transaction routes
	protected.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	protected.HandleFunc("/transactions", h.GetTransactions).Methods("GET")
	protected.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
}
