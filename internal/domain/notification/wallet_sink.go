package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletSink adapts the notification service to the wallet engine's sink
// interface. The engine calls it after commit and discards errors, so a
// notification outage never affects money movement.
type WalletSink struct {
	svc *Service
}

func NewWalletSink(svc *Service) *WalletSink {
	return &WalletSink{svc: svc}
}

func (s *WalletSink) PaymentReceived(ctx context.Context, recipientID uuid.UUID, senderName string, amount decimal.Decimal) error {
	return s.svc.NotifyPaymentReceived(ctx, recipientID, senderName, amount)
}

func (s *WalletSink) WithdrawalInitiated(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error {
	return s.svc.NotifyWithdrawalInitiated(ctx, userID, amount, reference)
}

func (s *WalletSink) DepositConfirmed(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error {
	return s.svc.NotifyDepositConfirmed(ctx, userID, amount, reference)
}
