package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sebuszqo/MyFiance/internal/finance/application"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/sebuszqo/MyFiance/internal/finance/infrastructure"
	"github.com/sebuszqo/MyFiance/internal/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &user.User{ID: 1, Email: "alice@example.com"}
	bob   = &user.User{ID: 2, Email: "bob@example.com"}
)

const validBody = `{"amount":"12.50","transaction_date":"2025-07-03","description":"Lunch","category_id":3,"type":"expense"}`

func newRouter(service TransactionServiceInterface) *http.ServeMux {
	handler := NewTransactionHandler(service, RespondJSON, RespondError)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions/", handler.GetUserTransactions)
	mux.HandleFunc("POST /transactions/", handler.CreateTransaction)
	mux.HandleFunc("PUT /transactions/{transactionID}", handler.UpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{transactionID}", handler.DeleteTransaction)
	mux.HandleFunc("GET /transactions/summary", handler.GetTransactionSummary)
	return mux
}

func do(mux http.Handler, as *user.User, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req = req.WithContext(user.WithContext(req.Context(), as))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestCreateTransaction_Created(t *testing.T) {
	service := &MockTransactionService{}
	w := do(newRouter(service), alice, http.MethodPost, "/transactions/", validBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, alice.ID, service.LastUserID)
	assert.True(t, service.LastFields.Amount.Equal(decimal.RequireFromString("12.5")))

	var response domain.TransactionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "12.50", response.Amount)
	assert.Equal(t, "2025-07-03", response.TransactionDate)
	assert.Equal(t, 3, response.Category.ID)
}

func TestCreateTransaction_NegativeAmountIsRejectedBeforeTheService(t *testing.T) {
	service := &MockTransactionService{}
	body := `{"amount":-5.00,"transaction_date":"2025-07-03","description":"x","category_id":3,"type":"expense"}`
	w := do(newRouter(service), alice, http.MethodPost, "/transactions/", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, service.Calls)
	assert.Equal(t, "Amount must be greater than zero", decodeError(t, w)["detail"])
}

func TestCreateTransaction_BoundaryValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad date", `{"amount":"1.00","transaction_date":"2025-13-40","category_id":3,"type":"expense"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"amount":"1.00","transaction_date":"2025-07-03","category_id":3,"type":"gift"}`, http.StatusUnprocessableEntity},
		{"too many decimals", `{"amount":"1.001","transaction_date":"2025-07-03","category_id":3,"type":"expense"}`, http.StatusUnprocessableEntity},
		{"missing amount", `{"transaction_date":"2025-07-03","category_id":3,"type":"expense"}`, http.StatusUnprocessableEntity},
		{"tiny exponent", `{"amount":1e-20000000,"transaction_date":"2025-07-03","category_id":3,"type":"expense"}`, http.StatusUnprocessableEntity},
		{"huge exponent", `{"amount":1e20000000,"transaction_date":"2025-07-03","category_id":3,"type":"expense"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"amount":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockTransactionService{}
			w := do(newRouter(service), alice, http.MethodPost, "/transactions/", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Zero(t, service.Calls)
		})
	}
}

func TestCreateTransaction_RequiresUser(t *testing.T) {
	w := do(newRouter(&MockTransactionService{}), nil, http.MethodPost, "/transactions/", validBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{financeErrors.ErrTransactionNotFound, http.StatusNotFound},
		{financeErrors.ErrForbidden, http.StatusForbidden},
		{financeErrors.ErrInvalidCategory, http.StatusUnprocessableEntity},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			mux := newRouter(&MockTransactionService{Err: tt.err})

			w := do(mux, alice, http.MethodPut, "/transactions/5", validBody)
			assert.Equal(t, tt.code, w.Code)

			w = do(mux, alice, http.MethodDelete, "/transactions/5", "")
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestServerErrorHidesCause(t *testing.T) {
	mux := newRouter(&MockTransactionService{Err: errors.New("pq: password authentication failed")})
	w := do(mux, alice, http.MethodGet, "/transactions/", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to retrieve transactions", decodeError(t, w)["message"])
}

func TestUpdateAndDelete_PassPathIDAndCaller(t *testing.T) {
	service := &MockTransactionService{}
	mux := newRouter(service)

	w := do(mux, bob, http.MethodPut, "/transactions/42", validBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), service.LastID)
	assert.Equal(t, bob.ID, service.LastUserID)

	w = do(mux, bob, http.MethodDelete, "/transactions/43", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, int64(43), service.LastID)
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	service := &MockTransactionService{}
	mux := newRouter(service)

	for _, path := range []string{"/transactions/abc", "/transactions/-1", "/transactions/0"} {
		w := do(mux, alice, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	assert.Zero(t, service.Calls)
}

func TestGetTransactionSummary(t *testing.T) {
	service := &MockTransactionService{Summary: application.TransactionSummary{
		IncomeTotal:  decimal.RequireFromString("2500"),
		ExpenseTotal: decimal.RequireFromString("835.4"),
		Balance:      decimal.RequireFromString("1664.6"),
		Months: []application.MonthSummary{{
			Month:        "2025-07",
			IncomeTotal:  decimal.RequireFromString("2500"),
			ExpenseTotal: decimal.RequireFromString("835.4"),
			Balance:      decimal.RequireFromString("1664.6"),
		}},
	}}
	w := do(newRouter(service), alice, http.MethodGet, "/transactions/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"income_total": "2500.00",
		"expense_total": "835.40",
		"balance": "1664.60",
		"months": [{"month": "2025-07", "income_total": "2500.00", "expense_total": "835.40", "balance": "1664.60"}]
	}`, w.Body.String())
}

// Runs the handlers over the real service and in-memory store.
func TestTransactionsEndToEnd(t *testing.T) {
	repo := infrastructure.NewMockTransactionRepository(domain.DefaultCategories)
	service := application.NewTransactionService(repo, application.NewCategoryService(&infrastructure.MockCategoryRepository{
		Categories: domain.DefaultCategories,
	}))
	mux := newRouter(service)

	w := do(mux, alice, http.MethodPost, "/transactions/", validBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.TransactionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "Gasto - Alimentos", created.Category.Name)

	_, err := repo.Create(context.Background(), bob.ID, domain.TransactionFields{
		Amount: decimal.RequireFromString("1"), Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		CategoryID: 1, Type: domain.TransactionTypeIncome,
	})
	require.NoError(t, err)

	w = do(mux, alice, http.MethodGet, "/transactions/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.TransactionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	path := "/transactions/" + strconv.FormatInt(created.ID, 10)
	assert.Equal(t, http.StatusForbidden, do(mux, bob, http.MethodPut, path, validBody).Code)
	assert.Equal(t, http.StatusForbidden, do(mux, bob, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(mux, alice, http.MethodPut, "/transactions/999999", validBody).Code)

	unknownCategory := `{"amount":"1.00","transaction_date":"2025-07-03","category_id":77,"type":"expense"}`
	assert.Equal(t, http.StatusUnprocessableEntity, do(mux, alice, http.MethodPut, path, unknownCategory).Code)

	assert.Equal(t, http.StatusNoContent, do(mux, alice, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(mux, alice, http.MethodDelete, path, "").Code)
}
