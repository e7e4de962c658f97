package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bridge-pay/bridge-api/internal/domain/user"
	"github.com/bridge-pay/bridge-api/internal/pkg/reference"
)

// Withdrawal fee policy: 1% of the amount, capped at KES 50.
var (
	withdrawFeeRate = decimal.NewFromFloat(0.01)
	withdrawFeeCap  = decimal.NewFromInt(50)
	minWithdrawal   = decimal.NewFromInt(10)
)

// Policy bounds the engine's retry loop and the atomic scope lifetime
type Policy struct {
	MaxAttempts  int
	ScopeTimeout time.Duration
}

// DefaultPolicy returns the operational defaults
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, ScopeTimeout: 10 * time.Second}
}

// Service is the transfer engine. It validates, executes and records
// peer-to-peer transfers as single all-or-nothing units, and owns the
// isolation and retry policy.
type Service struct {
	repo   *Repository
	users  user.Repository
	sink   Notifier
	policy Policy

	// newReference is swappable so tests can force reference collisions
	newReference func(prefix string) string
}

func NewService(repo *Repository, users user.Repository, sink Notifier, policy Policy) *Service {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.ScopeTimeout <= 0 {
		policy.ScopeTimeout = DefaultPolicy().ScopeTimeout
	}
	if sink == nil {
		sink = NopNotifier{}
	}
	return &Service{
		repo:         repo,
		users:        users,
		sink:         sink,
		policy:       policy,
		newReference: reference.New,
	}
}

// GetWallet returns the caller's wallet
func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	return s.repo.GetWallet(ctx, userID)
}

// History returns the caller's ledger rows, newest first
func (s *Service) History(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]HistoryEntry, int, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

// Transfer moves amount from the sender to the user owning recipientPhone and
// records the movement as one ledger row, exactly once.
//
// The preconditions below are cheap fast-fails only. The authoritative
// balance check happens inside the atomic scope: any check made out here
// would be stale the instant a concurrent transfer commits.
func (s *Service) Transfer(ctx context.Context, senderID uuid.UUID, recipientPhone string, amount decimal.Decimal, note string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	recipient, err := s.users.GetByPhone(ctx, recipientPhone)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}
	if !recipient.IsActive() {
		return nil, ErrRecipientInactive
	}
	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	senderName := "Someone"
	if sender, err := s.users.GetByID(ctx, senderID); err == nil && sender != nil {
		senderName = sender.Name
	}

	description := note
	if description == "" {
		description = "Transfer"
	}

	entry, err := s.withConflictRetry(ctx, "transfer", func() (*Transaction, error) {
		return s.executeTransfer(ctx, senderID, recipient.ID, amount, description)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "payment_received", func(ctx context.Context) error {
		return s.sink.PaymentReceived(ctx, recipient.ID, senderName, amount)
	})

	log.Info().
		Str("reference", entry.Reference).
		Str("from", senderID.String()).
		Str("to", recipient.ID.String()).
		Str("amount", amount.String()).
		Msg("transfer committed")

	return entry, nil
}

// executeTransfer is one attempt of the authoritative step. Everything in
// here happens inside a single serializable scope; nothing survives if the
// scope aborts.
func (s *Service) executeTransfer(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	var entry *Transaction

	err := s.repo.RunInScope(ctx, s.policy.ScopeTimeout, func(scopeCtx context.Context, tx *sqlx.Tx) error {
		balances, err := s.repo.LockBalances(scopeCtx, tx, senderID, recipientID)
		if err != nil {
			return err
		}
		if balances[senderID].LessThan(amount) {
			return ErrInsufficientFunds
		}

		if err := s.repo.AdjustBalance(scopeCtx, tx, senderID, amount.Neg()); err != nil {
			return err
		}
		if err := s.repo.AdjustBalance(scopeCtx, tx, recipientID, amount); err != nil {
			return err
		}

		entry = &Transaction{
			ID:          uuid.New(),
			Reference:   s.newReference(reference.PrefixTransfer),
			FromUserID:  &senderID,
			ToUserID:    &recipientID,
			Amount:      amount,
			Fee:         decimal.Zero,
			Type:        TypeTransfer,
			Status:      StatusSuccess,
			Description: description,
			CreatedAt:   time.Now(),
		}
		return s.repo.AppendEntry(scopeCtx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Deposit credits a wallet after an external rail confirms an inbound
// payment. The rail supplies the reference, so replays of the same callback
// are idempotent: an existing row with the same amount is returned as-is, a
// mismatched amount fails with ErrReferenceConflict.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, ref, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if ref == "" {
		return nil, ErrInvalidReference
	}
	if description == "" {
		description = "Deposit"
	}

	var created bool
	entry, err := s.withConflictRetry(ctx, "deposit", func() (*Transaction, error) {
		entry, fresh, err := s.depositOnce(ctx, userID, amount, ref, description)
		if errors.Is(err, ErrDuplicateReference) {
			// Lost the insert race to a concurrent replay of the same
			// callback. The winner has committed, so a rerun finds its row.
			entry, fresh, err = s.depositOnce(ctx, userID, amount, ref, description)
		}
		if err != nil {
			return nil, err
		}
		created = fresh
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.notify(ctx, "deposit_confirmed", func(ctx context.Context) error {
			return s.sink.DepositConfirmed(ctx, userID, amount, entry.Reference)
		})
	}

	return entry, nil
}

// depositOnce is one attempt of the deposit scope. The bool reports whether
// this attempt inserted a new row, as opposed to replaying an existing one.
func (s *Service) depositOnce(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, ref, description string) (*Transaction, bool, error) {
	var entry *Transaction
	var created bool

	err := s.repo.RunInScope(ctx, s.policy.ScopeTimeout, func(scopeCtx context.Context, tx *sqlx.Tx) error {
		existing, found, err := s.repo.GetEntryByReference(scopeCtx, tx, ref)
		if err != nil {
			return err
		}
		if found {
			if existing.Type != TypeDeposit || !existing.Amount.Equal(amount) {
				return ErrReferenceConflict
			}
			entry = existing
			return nil
		}

		if _, err := s.repo.LockBalances(scopeCtx, tx, userID); err != nil {
			return err
		}
		if err := s.repo.AdjustBalance(scopeCtx, tx, userID, amount); err != nil {
			return err
		}

		entry = &Transaction{
			ID:          uuid.New(),
			Reference:   ref,
			ToUserID:    &userID,
			Amount:      amount,
			Fee:         decimal.Zero,
			Type:        TypeDeposit,
			Status:      StatusSuccess,
			Description: description,
			CreatedAt:   time.Now(),
		}
		created = true
		return s.repo.AppendEntry(scopeCtx, tx, entry)
	})
	if err != nil {
		return nil, false, err
	}
	return entry, created, nil
}

// Withdraw debits amount plus fee from the wallet and records a PENDING
// withdrawal row; settlement against the external rail happens outside this
// engine and is reconciled by reference.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, phone, note string) (*Transaction, error) {
	if !amount.IsPositive() || amount.LessThan(minWithdrawal) {
		return nil, ErrInvalidAmount
	}

	fee := decimal.Min(amount.Mul(withdrawFeeRate), withdrawFeeCap)
	total := amount.Add(fee)

	description := note
	if description == "" {
		description = "Withdrawal to " + phone
	}

	entry, err := s.withConflictRetry(ctx, "withdrawal", func() (*Transaction, error) {
		var entry *Transaction
		err := s.repo.RunInScope(ctx, s.policy.ScopeTimeout, func(scopeCtx context.Context, tx *sqlx.Tx) error {
			balances, err := s.repo.LockBalances(scopeCtx, tx, userID)
			if err != nil {
				return err
			}
			if balances[userID].LessThan(total) {
				return ErrInsufficientFunds
			}

			if err := s.repo.AdjustBalance(scopeCtx, tx, userID, total.Neg()); err != nil {
				return err
			}

			entry = &Transaction{
				ID:          uuid.New(),
				Reference:   s.newReference(reference.PrefixWithdrawal),
				FromUserID:  &userID,
				Amount:      amount,
				Fee:         fee,
				Type:        TypeWithdrawal,
				Status:      StatusPending,
				Description: description,
				CreatedAt:   time.Now(),
			}
			return s.repo.AppendEntry(scopeCtx, tx, entry)
		})
		if err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "withdrawal_initiated", func(ctx context.Context) error {
		return s.sink.WithdrawalInitiated(ctx, userID, amount, entry.Reference)
	})

	return entry, nil
}

// withConflictRetry reruns fn while the underlying scope keeps losing
// serialization races, up to the policy's attempt bound. Each rerun starts a
// fresh scope, so no partial state carries over between attempts. Business
// failures pass straight through.
func (s *Service) withConflictRetry(ctx context.Context, op string, fn func() (*Transaction, error)) (*Transaction, error) {
	var entry *Transaction
	var err error

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		entry, err = fn()
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrTransientConflict) {
			return nil, err
		}

		log.Warn().
			Str("op", op).
			Int("attempt", attempt).
			Int("max_attempts", s.policy.MaxAttempts).
			Msg("serialization conflict, retrying")
	}

	return nil, err
}

// notify runs the sink outside the committed scope. Failures are logged and
// suppressed: a dead sink must never undo committed money movement.
func (s *Service) notify(ctx context.Context, event string, fn func(ctx context.Context) error) {
	notifyCtx := context.WithoutCancel(ctx)
	if err := fn(notifyCtx); err != nil {
		log.Error().Err(err).
			Str("event", event).
			Msg("notification failed")
	}
}
