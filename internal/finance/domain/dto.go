package domain

import (
	"time"

	"github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// TransactionRequest is the create/update body. Amount accepts a JSON number
// or a quoted decimal.
type TransactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description"`
	CategoryID      int             `json:"category_id"`
	Type            string          `json:"type"`
}

func (r TransactionRequest) ToFields() (TransactionFields, error) {
	date, err := time.Parse(DateLayout, r.TransactionDate)
	if err != nil {
		return TransactionFields{}, errors.NewValidationError("Transaction date must be formatted as YYYY-MM-DD")
	}
	fields := TransactionFields{
		Amount:      r.Amount,
		Date:        date,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Type:        TransactionType(r.Type),
	}
	if err := fields.Validate(); err != nil {
		return TransactionFields{}, err
	}
	return fields, nil
}

type TransactionResponse struct {
	ID              int64    `json:"transaction_id"`
	Amount          string   `json:"amount"`
	TransactionDate string   `json:"transaction_date"`
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	Category        Category `json:"category"`
}

func NewTransactionResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Amount:          t.Amount.StringFixed(amountScale),
		TransactionDate: t.Date.Format(DateLayout),
		Description:     t.Description,
		Type:            string(t.Type),
		Category:        t.Category,
	}
}

func NewTransactionResponses(transactions []Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, NewTransactionResponse(t))
	}
	return responses
}
