package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) InsertWallet(ctx context.Context, userID uuid.UUID, name string) (*ledger.Wallet, error) {
	w := ledger.Wallet{ID: uuid.New(), UserID: userID, Name: name}
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO wallets (id, user_id, wallet_name)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		w.ID, w.UserID, w.Name,
	).Scan(&w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) ListWallets(ctx context.Context, userID uuid.UUID) ([]ledger.Wallet, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, user_id, wallet_name, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Wallet, 0)
	for rows.Next() {
		var w ledger.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *Repository) GetWallet(ctx context.Context, userID, walletID uuid.UUID) (*ledger.Wallet, error) {
	var w ledger.Wallet
	err := r.Pool.QueryRow(ctx, `
		SELECT id, user_id, wallet_name, created_at
		FROM wallets
		WHERE id = $1 AND user_id = $2`, walletID, userID,
	).Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("wallet not found")
		}
		return nil, err
	}
	return &w, nil
}

func (r *Repository) RenameWallet(ctx context.Context, userID, walletID uuid.UUID, name string) error {
	ct, err := r.Pool.Exec(ctx,
		`UPDATE wallets SET wallet_name = $3 WHERE id = $1 AND user_id = $2`,
		walletID, userID, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("wallet not found")
	}
	return nil
}

func (r *Repository) DeleteWallet(ctx context.Context, userID, walletID uuid.UUID) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM wallets WHERE id = $1 AND user_id = $2`,
		walletID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("wallet not found")
	}
	return nil
}

const accountColumns = `a.id, a.wallet_id, a.program_id, a.account_number, a.name,
       a.current_balance, a.average_cost, a.last_updated, a.is_active, a.created_at`

func scanAccount(row pgx.Row) (*ledger.Account, error) {
	var a ledger.Account
	err := row.Scan(
		&a.ID, &a.WalletID, &a.ProgramID, &a.Number, &a.Name,
		&a.Balance, &a.AverageCost, &a.LastUpdated, &a.Active, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, err
	}
	return &a, nil
}

// InsertAccount creates a loyalty account inside one of the user's wallets.
// The program must exist and be active.
func (r *Repository) InsertAccount(ctx context.Context, userID uuid.UUID, a *ledger.Account) error {
	if _, err := r.GetWallet(ctx, userID, a.WalletID); err != nil {
		return err
	}

	var programActive bool
	err := r.Pool.QueryRow(ctx,
		`SELECT is_active FROM loyalty_programs WHERE id = $1`, a.ProgramID,
	).Scan(&programActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("loyalty program not found")
		}
		return err
	}
	if !programActive {
		return apperr.Validation("cannot create an account on an inactive program")
	}

	return r.Pool.QueryRow(ctx, `
		INSERT INTO loyalty_accounts
			(id, wallet_id, program_id, account_number, name, current_balance,
			 average_cost, last_updated, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING created_at`,
		a.ID, a.WalletID, a.ProgramID, a.Number, a.Name, a.Balance,
		a.AverageCost, a.LastUpdated,
	).Scan(&a.CreatedAt)
}

// ListAccounts returns the user's active accounts, optionally restricted to
// one wallet.
func (r *Repository) ListAccounts(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID) ([]ledger.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		WHERE w.user_id = $1 AND a.is_active`
	args := []any{userID}
	if walletID != nil {
		query += ` AND a.wallet_id = $2`
		args = append(args, *walletID)
	}
	query += ` ORDER BY a.name`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Account, 0)
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(
			&a.ID, &a.WalletID, &a.ProgramID, &a.Number, &a.Name,
			&a.Balance, &a.AverageCost, &a.LastUpdated, &a.Active, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*ledger.Account, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		WHERE a.id = $1 AND w.user_id = $2`, accountID, userID)
	return scanAccount(row)
}

// UpdateAccountAttrs edits the editable attributes. Balance and average cost
// are off limits here: only the effect engine mutates those.
func (r *Repository) UpdateAccountAttrs(ctx context.Context, userID, accountID uuid.UUID, name, number string) error {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE loyalty_accounts a
		SET name = $3, account_number = $4, last_updated = NOW()
		FROM wallets w
		WHERE a.id = $1 AND w.id = a.wallet_id AND w.user_id = $2`,
		accountID, userID, name, number)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}

func (r *Repository) SetAccountActive(ctx context.Context, userID, accountID uuid.UUID, active bool) error {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE loyalty_accounts a
		SET is_active = $3, last_updated = NOW()
		FROM wallets w
		WHERE a.id = $1 AND w.id = a.wallet_id AND w.user_id = $2`,
		accountID, userID, active)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}
