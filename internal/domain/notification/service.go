package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service handles notification logic
type Service struct {
	repo Repository
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a notification
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, onlyUnread, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks a single notification as read for its owner
func (s *Service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Helper methods for creating specific notifications ---

// NotifyPaymentReceived tells the recipient money has arrived
func (s *Service) NotifyPaymentReceived(ctx context.Context, recipientID uuid.UUID, senderName string, amount decimal.Decimal) error {
	actionURL := "/wallet"
	amountStr := amount.StringFixed(2)
	_, err := s.Create(ctx, recipientID, TypePaymentReceived,
		"Money Received",
		"You received KES "+amountStr+" from "+senderName,
		&NotificationData{Amount: &amountStr, ActionURL: &actionURL},
	)
	return err
}

// NotifyWithdrawalInitiated tells the owner a payout left the wallet
func (s *Service) NotifyWithdrawalInitiated(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error {
	actionURL := "/wallet"
	amountStr := amount.StringFixed(2)
	_, err := s.Create(ctx, userID, TypeWithdrawalInitiated,
		"Withdrawal Initiated",
		"Your withdrawal of KES "+amountStr+" is being processed",
		&NotificationData{Amount: &amountStr, Reference: &reference, ActionURL: &actionURL},
	)
	return err
}

// NotifyDepositConfirmed tells the owner an external deposit settled
func (s *Service) NotifyDepositConfirmed(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) error {
	actionURL := "/wallet"
	amountStr := amount.StringFixed(2)
	_, err := s.Create(ctx, userID, TypeDepositConfirmed,
		"Deposit Confirmed",
		"KES "+amountStr+" has been added to your wallet",
		&NotificationData{Amount: &amountStr, Reference: &reference, ActionURL: &actionURL},
	)
	return err
}
