package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/sebuszqo/MyFiance/internal/finance/application"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/sebuszqo/MyFiance/internal/user"
)

type TransactionServiceInterface interface {
	ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, userID int64, fields domain.TransactionFields) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID, userID int64, fields domain.TransactionFields) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID, userID int64) error
	GetTransactionSummary(ctx context.Context, userID int64) (application.TransactionSummary, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil {
		log.Fatal("RespondJSON function must not be nil")
		return nil
	}
	if respondError == nil {
		log.Fatal("RespondError function must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type summaryResponse struct {
	IncomeTotal  string                 `json:"income_total"`
	ExpenseTotal string                 `json:"expense_total"`
	Balance      string                 `json:"balance"`
	Months       []monthSummaryResponse `json:"months"`
}

type monthSummaryResponse struct {
	Month        string `json:"month"`
	IncomeTotal  string `json:"income_total"`
	ExpenseTotal string `json:"expense_total"`
	Balance      string `json:"balance"`
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := user.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), currentUser.ID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, domain.NewTransactionResponses(transactions))
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := user.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), currentUser.ID, fields)
	if err != nil {
		h.handleServiceError(w, err, "Failed to create transaction")
		return
	}
	h.respondJSON(w, http.StatusCreated, domain.NewTransactionResponse(*transaction))
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := user.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), transactionID, currentUser.ID, fields)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, domain.NewTransactionResponse(*transaction))
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := user.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), transactionID, currentUser.ID); err != nil {
		h.handleServiceError(w, err, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := user.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	summary, err := h.service.GetTransactionSummary(r.Context(), currentUser.ID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve transaction summary")
		return
	}

	response := summaryResponse{
		IncomeTotal:  summary.IncomeTotal.StringFixed(2),
		ExpenseTotal: summary.ExpenseTotal.StringFixed(2),
		Balance:      summary.Balance.StringFixed(2),
		Months:       make([]monthSummaryResponse, 0, len(summary.Months)),
	}
	for _, month := range summary.Months {
		response.Months = append(response.Months, monthSummaryResponse{
			Month:        month.Month,
			IncomeTotal:  month.IncomeTotal.StringFixed(2),
			ExpenseTotal: month.ExpenseTotal.StringFixed(2),
			Balance:      month.Balance.StringFixed(2),
		})
	}
	h.respondJSON(w, http.StatusOK, response)
}

// transactionID reads the {transactionID} path value. An id that cannot name
// a transaction is reported the same way as a missing one.
func (h *TransactionHandler) transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("transactionID"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return 0, false
	}
	return id, true
}

func (h *TransactionHandler) decodeFields(w http.ResponseWriter, r *http.Request) (domain.TransactionFields, bool) {
	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return domain.TransactionFields{}, false
	}
	fields, err := req.ToFields()
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return domain.TransactionFields{}, false
	}
	return fields, true
}

func (h *TransactionHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrTransactionNotFound):
		h.respondError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, financeErrors.ErrForbidden):
		h.respondError(w, http.StatusForbidden, "Not enough permissions")
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("[Transactions] %s: %v", fallback, err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
