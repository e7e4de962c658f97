package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest for POST /wallet/transfer
type TransferRequest struct {
	RecipientPhone string          `json:"recipient_phone" validate:"required,phone"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note" validate:"omitempty,max=255"`
}

// DepositRequest for POST /wallet/deposit
type DepositRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference" validate:"required,min=6,max=64"`
	Note      string          `json:"note" validate:"omitempty,max=255"`
}

// WithdrawRequest for POST /wallet/withdraw
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Phone  string          `json:"phone" validate:"required,phone"`
	Note   string          `json:"note" validate:"omitempty,max=255"`
}

// BalanceResponse represents wallet state in API responses
type BalanceResponse struct {
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	UpdatedAt string          `json:"updated_at"`
}

func BalanceResponseFromEntity(w *Wallet) *BalanceResponse {
	return &BalanceResponse{
		Balance:   w.Balance,
		Currency:  w.Currency,
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Reference   string          `json:"reference"`
	FromUserID  *uuid.UUID      `json:"from_user_id,omitempty"`
	ToUserID    *uuid.UUID      `json:"to_user_id,omitempty"`
	FromName    *string         `json:"from_name,omitempty"`
	ToName      *string         `json:"to_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func TransactionResponseFromEntity(t *Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Reference:   t.Reference,
		FromUserID:  t.FromUserID,
		ToUserID:    t.ToUserID,
		Amount:      t.Amount,
		Fee:         t.Fee,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func TransactionResponseFromHistory(e *HistoryEntry) *TransactionResponse {
	resp := TransactionResponseFromEntity(&e.Transaction)
	resp.FromName = e.FromName
	resp.ToName = e.ToName
	return resp
}
