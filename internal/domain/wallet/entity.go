package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType matches the tx_type enum
type TransactionType string

const (
	TypeTransfer   TransactionType = "TRANSFER"
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus matches the tx_status enum. SUCCESS and FAILED are
// terminal; a terminal row is never updated.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
	StatusPending TransactionStatus = "PENDING"
)

// Wallet holds the committed balance for one user. Balance is never negative
// at any committed state; mutations happen only inside an atomic scope.
type Wallet struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger row keyed by a globally unique
// reference. FromUserID is null for deposits, ToUserID for withdrawals.
type Transaction struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	Reference   string            `db:"reference" json:"reference"`
	FromUserID  *uuid.UUID        `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID    *uuid.UUID        `db:"to_user_id" json:"to_user_id,omitempty"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Fee         decimal.Decimal   `db:"fee" json:"fee"`
	Type        TransactionType   `db:"type" json:"type"`
	Status      TransactionStatus `db:"status" json:"status"`
	Description string            `db:"description" json:"description"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// HistoryEntry is a ledger row with counterparty display names resolved
type HistoryEntry struct {
	Transaction
	FromName *string `db:"from_name" json:"from_name,omitempty"`
	ToName   *string `db:"to_name" json:"to_name,omitempty"`
}

// HistoryFilter narrows transaction history queries
type HistoryFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}
