package summary

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/ledger"
	"github.com/haniellourenco/EasyMiles/internal/money"
)

type Repo struct {
	DB *pgxpool.Pool
}

// ProgramSummary rolls the accounts of one program into a single line:
// combined balance and its estimated value at the program's rate.
type ProgramSummary struct {
	Name         string              `json:"name"`
	CurrencyType ledger.CurrencyKind `json:"currency_type"`
	TotalBalance decimal.Decimal     `json:"total_balance"`
	TotalValue   decimal.Decimal     `json:"total_value"`
}

type CurrencyBalance struct {
	CurrencyName     string          `json:"currency_name"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	DistinctPrograms int             `json:"distinct_programs_count"`
}

type Summary struct {
	UserID                uuid.UUID         `json:"user_id"`
	TotalWallets          int               `json:"total_wallets"`
	TotalActiveAccounts   int               `json:"total_active_loyalty_accounts"`
	OverallEstimatedValue decimal.Decimal   `json:"overall_estimated_value"`
	Programs              []ProgramSummary  `json:"programs_summary"`
	BalancesByCurrency    []CurrencyBalance `json:"balances_by_currency_type"`
	AcquisitionCost       decimal.Decimal   `json:"total_acquisition_cost_tracked"`
	PointsSold            decimal.Decimal   `json:"total_points_milhas_sold"`
	SalesRevenue          decimal.Decimal   `json:"total_revenue_from_sales"`
}

// GetByUser computes the read-only rollup over the user's active accounts.
// Account value is (balance/1000)*rate, 0 when the program has no positive
// rate; monetary outputs are rounded half-up to 2 places here, at the
// presentation edge, and nowhere earlier.
func (r Repo) GetByUser(ctx context.Context, userID uuid.UUID) (Summary, error) {
	s := Summary{
		UserID:                userID,
		OverallEstimatedValue: decimal.Zero,
		Programs:              []ProgramSummary{},
		BalancesByCurrency:    []CurrencyBalance{},
		AcquisitionCost:       decimal.Zero,
		PointsSold:            decimal.Zero,
		SalesRevenue:          decimal.Zero,
	}

	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM wallets WHERE user_id = $1),
			(SELECT COUNT(*)
			 FROM loyalty_accounts a JOIN wallets w ON w.id = a.wallet_id
			 WHERE w.user_id = $1 AND a.is_active)`,
		userID,
	).Scan(&s.TotalWallets, &s.TotalActiveAccounts)
	if err != nil {
		return Summary{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT p.name, p.currency_type,
		       COALESCE(SUM(a.current_balance), 0),
		       COALESCE(SUM(CASE WHEN p.custom_rate IS NOT NULL AND p.custom_rate > 0
		                         THEN (a.current_balance / 1000.0) * p.custom_rate
		                         ELSE 0 END), 0)
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		JOIN loyalty_programs p ON p.id = a.program_id
		WHERE w.user_id = $1 AND a.is_active
		GROUP BY p.id, p.name, p.currency_type
		ORDER BY 4 DESC`,
		userID,
	)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var ps ProgramSummary
		if err := rows.Scan(&ps.Name, &ps.CurrencyType, &ps.TotalBalance, &ps.TotalValue); err != nil {
			return Summary{}, err
		}
		total = total.Add(ps.TotalValue)
		ps.TotalValue = money.Round2(ps.TotalValue)
		s.Programs = append(s.Programs, ps)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	s.OverallEstimatedValue = money.Round2(total)

	curRows, err := r.DB.Query(ctx, `
		SELECT p.currency_type,
		       COALESCE(SUM(a.current_balance), 0),
		       COUNT(DISTINCT p.id)
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		JOIN loyalty_programs p ON p.id = a.program_id
		WHERE w.user_id = $1 AND a.is_active
		GROUP BY p.currency_type
		ORDER BY p.currency_type`,
		userID,
	)
	if err != nil {
		return Summary{}, err
	}
	defer curRows.Close()

	for curRows.Next() {
		var kind ledger.CurrencyKind
		var cb CurrencyBalance
		if err := curRows.Scan(&kind, &cb.TotalBalance, &cb.DistinctPrograms); err != nil {
			return Summary{}, err
		}
		cb.CurrencyName = kind.String()
		s.BalancesByCurrency = append(s.BalancesByCurrency, cb)
	}
	if err := curRows.Err(); err != nil {
		return Summary{}, err
	}

	// Historical acquisition cost: money spent on credits landing in the
	// user's accounts (manual credits and transfer fees).
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(t.cost), 0)
		FROM points_transactions t
		JOIN loyalty_accounts a ON a.id = t.destination_account_id
		JOIN wallets w ON w.id = a.wallet_id
		WHERE w.user_id = $1
		  AND t.transaction_type IN (1, 2)
		  AND t.cost IS NOT NULL AND t.cost > 0`,
		userID,
	).Scan(&s.AcquisitionCost)
	if err != nil {
		return Summary{}, err
	}
	s.AcquisitionCost = money.Round2(s.AcquisitionCost)

	// Sale volume and revenue: cost holds the proceeds on sale records.
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(t.amount), 0), COALESCE(SUM(t.cost), 0)
		FROM points_transactions t
		JOIN loyalty_accounts a ON a.id = t.origin_account_id
		JOIN wallets w ON w.id = a.wallet_id
		WHERE w.user_id = $1
		  AND t.transaction_type = 4
		  AND t.cost IS NOT NULL`,
		userID,
	).Scan(&s.PointsSold, &s.SalesRevenue)
	if err != nil {
		return Summary{}, err
	}
	s.SalesRevenue = money.Round2(s.SalesRevenue)

	return s, nil
}
