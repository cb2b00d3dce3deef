package txn

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

// Store is the persistence surface the lifecycle service works against.
// InTx runs fn inside one all-or-nothing database transaction; everything a
// single create/update/delete needs happens through the UnitOfWork it gets.
type Store interface {
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
	ListByUser(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID, limit int) ([]Transaction, error)
}

type UnitOfWork interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// LockAccount loads an account with a row lock (SELECT ... FOR UPDATE)
	// so concurrent writes on the same account serialize.
	LockAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error)
	SaveAccount(ctx context.Context, a *ledger.Account) error

	// AccountOwner resolves the user owning the wallet the account lives in.
	AccountOwner(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

type PgStore struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Pool: pool}
}

func (s *PgStore) InTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgUnit{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const txnColumns = `id, transaction_type, amount, cost, origin_account_id, destination_account_id,
       bonus_percentage, description, transaction_date, created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID, &t.Kind, &t.Amount, &t.Cost, &t.OriginID, &t.DestinationID,
		&t.BonusPct, &t.Description, &t.Date, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, err
	}
	return &t, nil
}

func (s *PgStore) ListByUser(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT ` + txnColumns + `
		FROM points_transactions t
		WHERE EXISTS (
			SELECT 1 FROM loyalty_accounts a
			JOIN wallets w ON w.id = a.wallet_id
			WHERE w.user_id = $1
			  AND a.id IN (t.origin_account_id, t.destination_account_id)
		)`
	args := []any{userID}
	if accountID != nil {
		query += ` AND (t.origin_account_id = $2 OR t.destination_account_id = $2)`
		args = append(args, *accountID)
	}
	query += ` ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, limit)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.Kind, &t.Amount, &t.Cost, &t.OriginID, &t.DestinationID,
			&t.BonusPct, &t.Description, &t.Date, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type pgUnit struct {
	tx pgx.Tx
}

func (u *pgUnit) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	row := u.tx.QueryRow(ctx, `SELECT `+txnColumns+` FROM points_transactions t WHERE id = $1`, id)
	return scanTransaction(row)
}

func (u *pgUnit) InsertTransaction(ctx context.Context, t *Transaction) error {
	return u.tx.QueryRow(ctx, `
		INSERT INTO points_transactions
			(id, transaction_type, amount, cost, origin_account_id, destination_account_id,
			 bonus_percentage, description, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		t.ID, t.Kind, t.Amount, t.Cost, t.OriginID, t.DestinationID,
		t.BonusPct, t.Description, t.Date,
	).Scan(&t.CreatedAt)
}

func (u *pgUnit) UpdateTransaction(ctx context.Context, t *Transaction) error {
	ct, err := u.tx.Exec(ctx, `
		UPDATE points_transactions
		SET transaction_type = $2, amount = $3, cost = $4, origin_account_id = $5,
		    destination_account_id = $6, bonus_percentage = $7, description = $8,
		    transaction_date = $9
		WHERE id = $1`,
		t.ID, t.Kind, t.Amount, t.Cost, t.OriginID, t.DestinationID,
		t.BonusPct, t.Description, t.Date,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func (u *pgUnit) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	ct, err := u.tx.Exec(ctx, `DELETE FROM points_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func (u *pgUnit) LockAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var a ledger.Account
	err := u.tx.QueryRow(ctx, `
		SELECT id, wallet_id, program_id, account_number, name, current_balance,
		       average_cost, last_updated, is_active, created_at
		FROM loyalty_accounts
		WHERE id = $1
		FOR UPDATE`, id,
	).Scan(
		&a.ID, &a.WalletID, &a.ProgramID, &a.Number, &a.Name, &a.Balance,
		&a.AverageCost, &a.LastUpdated, &a.Active, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, err
	}
	return &a, nil
}

func (u *pgUnit) SaveAccount(ctx context.Context, a *ledger.Account) error {
	_, err := u.tx.Exec(ctx, `
		UPDATE loyalty_accounts
		SET current_balance = $2, average_cost = $3, last_updated = $4
		WHERE id = $1`,
		a.ID, a.Balance, a.AverageCost, a.LastUpdated,
	)
	return err
}

func (u *pgUnit) AccountOwner(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := u.tx.QueryRow(ctx, `
		SELECT w.user_id
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		WHERE a.id = $1`, accountID,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.NotFound("account not found")
		}
		return uuid.Nil, err
	}
	return owner, nil
}

