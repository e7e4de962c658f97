package wallet

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Repository provides wallet balance state and ledger persistence. All
// balance mutations go through an atomic scope opened by RunInScope; there is
// no scope-less write path.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateWallet provisions an empty wallet for a user. Wallets are created
// when the identity subsystem registers an account, never during a transfer.
func (r *Repository) CreateWallet(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, balance)
	return err
}

// GetBalance reads the committed balance outside any scope. The result is
// advisory only: it must never gate a later write.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrWalletNotFound
	}
	return balance, err
}

// GetWallet returns the full wallet row
func (r *Repository) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT user_id, balance, currency, updated_at FROM wallets WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// RunInScope executes fn inside one serializable transaction bounded by
// timeout. Either every read and write in fn takes effect, or none do. A
// serialization failure (or deadlock) surfaces as ErrTransientConflict so the
// engine can retry the whole scope from scratch; an expired timeout surfaces
// as ErrTimeout with the scope rolled back.
func (r *Repository) RunInScope(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	scopeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(scopeCtx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classifyScopeErr(scopeCtx, err)
	}
	defer tx.Rollback()

	if err := fn(scopeCtx, tx); err != nil {
		return classifyScopeErr(scopeCtx, err)
	}

	if err := tx.Commit(); err != nil {
		return classifyScopeErr(scopeCtx, err)
	}

	return nil
}

// LockBalances locks the given wallets FOR UPDATE in ascending user-id order
// and returns their balances. Serializable isolation already prevents write
// skew; the fixed lock order additionally avoids deadlock between two
// transfers touching the same pair of wallets in opposite directions.
func (r *Repository) LockBalances(ctx context.Context, tx *sqlx.Tx, userIDs ...uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	ordered := make([]uuid.UUID, len(userIDs))
	copy(ordered, userIDs)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && bytes.Compare(ordered[j][:], ordered[j-1][:]) < 0; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	balances := make(map[uuid.UUID]decimal.Decimal, len(ordered))
	for _, id := range ordered {
		var balance decimal.Decimal
		err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		if err != nil {
			return nil, err
		}
		balances[id] = balance
	}
	return balances, nil
}

// AdjustBalance applies delta (positive or negative) to a wallet inside the
// scope. The non-negative check and the update are a single statement, atomic
// with respect to concurrent adjustments on the same wallet.
func (r *Repository) AdjustBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, delta decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance + $2 >= 0
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`, userID); err != nil {
			return err
		}
		if !exists {
			return ErrWalletNotFound
		}
		return ErrInsufficientFunds
	}

	return nil
}

// AppendEntry writes a new immutable ledger row inside the scope. A reference
// collision surfaces as ErrDuplicateReference.
func (r *Repository) AppendEntry(ctx context.Context, tx *sqlx.Tx, entry *Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, reference, from_user_id, to_user_id, amount, fee, type, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.Reference, entry.FromUserID, entry.ToUserID, entry.Amount, entry.Fee,
		string(entry.Type), string(entry.Status), entry.Description, entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// GetEntryByReference looks a ledger row up by its unique reference inside
// the scope. Used for idempotent replay of rail-supplied references.
func (r *Repository) GetEntryByReference(ctx context.Context, tx *sqlx.Tx, ref string) (*Transaction, bool, error) {
	var entry Transaction
	err := tx.GetContext(ctx, &entry, `
		SELECT id, reference, from_user_id, to_user_id, amount, fee, type, status, description, created_at
		FROM transactions
		WHERE reference = $1
	`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

// ListByUser returns ledger rows where the user is sender or recipient,
// newest first, with counterparty names resolved.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]HistoryEntry, int, error) {
	base := `
		FROM transactions t
		LEFT JOIN users fu ON fu.id = t.from_user_id
		LEFT JOIN users tu ON tu.id = t.to_user_id
		WHERE (t.from_user_id = $1 OR t.to_user_id = $1)`
	args := []interface{}{userID}
	idx := 2

	if filter.Type != "" {
		base += fmt.Sprintf(" AND t.type = $%d", idx)
		args = append(args, filter.Type)
		idx++
	}
	if filter.Status != "" {
		base += fmt.Sprintf(" AND t.status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := strings.TrimSpace(`
		SELECT t.id, t.reference, t.from_user_id, t.to_user_id, t.amount, t.fee,
		       t.type, t.status, t.description, t.created_at,
		       fu.name AS from_name, tu.name AS to_name ` + base +
		fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, limit, filter.Offset)

	entries := make([]HistoryEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	return entries, total, nil
}

// classifyScopeErr maps driver-level failures onto the engine's error
// taxonomy. 40001 is serialization_failure, 40P01 deadlock_detected; both mean
// the scope lost a race and is safe to rerun from scratch.
func classifyScopeErr(ctx context.Context, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return ErrTransientConflict
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
