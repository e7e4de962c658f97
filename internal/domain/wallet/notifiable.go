package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier receives wallet events after their scope commits. Delivery is
// fire-and-forget: the engine logs and suppresses any error, so a failing
// sink can never roll back committed financial state.
type Notifier interface {
	PaymentReceived(ctx context.Context, recipientID uuid.UUID, senderName string, amount decimal.Decimal) error
	WithdrawalInitiated(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error
	DepositConfirmed(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error
}

// NopNotifier discards events. Used when no sink is wired, and in tests.
type NopNotifier struct{}

func (NopNotifier) PaymentReceived(context.Context, uuid.UUID, string, decimal.Decimal) error {
	return nil
}

func (NopNotifier) WithdrawalInitiated(context.Context, uuid.UUID, decimal.Decimal, string) error {
	return nil
}

func (NopNotifier) DepositConfirmed(context.Context, uuid.UUID, decimal.Decimal, string) error {
	return nil
}
