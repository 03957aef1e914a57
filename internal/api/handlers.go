package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/models"
	"github.com/devialdimp/bank-ledger/internal/service"
)

// StatementReader serves the archived per-account statement projection.
type StatementReader interface {
	StatementsByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]models.StatementEntry, error)
}

// Handler is for handling api requests
type Handler struct {
	users      *service.UserService
	accounts   *service.AccountService
	transfers  *service.TransferService
	ledger     *service.LedgerService
	statements StatementReader
	logger     *zap.Logger
}

func NewHandler(
	users *service.UserService,
	accounts *service.AccountService,
	transfers *service.TransferService,
	ledger *service.LedgerService,
	statements StatementReader,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:      users,
		accounts:   accounts,
		transfers:  transfers,
		ledger:     ledger,
		statements: statements,
		logger:     logger,
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// for error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the domain error taxonomy to HTTP status codes. Every kind
// keeps its own message; nothing collapses into a generic 500 unless it is
// genuinely unclassified.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrBadAccountNumber),
		errors.Is(err, models.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSenderAccountNotFound),
		errors.Is(err, models.ErrReceiverAccountNotFound),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, models.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrTxConflict),
		errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// pathID parses the {id} route variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

// --- auth ---

// handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// handles login and token issuance
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := h.users.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

// Authenticate echoes the identity resolved by the auth middleware.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// --- users ---

// handles user list retrieval
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// handles user retrieval
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// --- accounts ---

// account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, account)
}

// handles account list retrieval
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

// handles account retrieval
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// handles account update
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, &req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// handles cascading account deletion
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// handles archived statement retrieval for an account
func (h *Handler) GetStatements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	// default limit is set to 20
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	entries, err := h.statements.StatementsByAccountID(r.Context(), id, limit, offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// --- transactions ---

// handles transfer execution
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.transfers.Transfer(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// handles transaction list retrieval
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListTransactions(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// handles transaction retrieval
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// handles health check
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
