package simulation

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
	"github.com/haniellourenco/EasyMiles/internal/money"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type transferRequest struct {
	FromAccountID string   `json:"from_account_id"`
	ToAccountID   string   `json:"to_account_id"`
	Amount        float64  `json:"amount"`
	BonusPct      *float64 `json:"bonus_percentage"`
}

type saleRequest struct {
	AccountID    string  `json:"loyalty_account_id"`
	AmountToSell float64 `json:"amount_to_sell"`
	PricePerK    float64 `json:"sale_price_per_1000_miles"`
}

func (h *Handler) SimulateTransfer(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := userContext(c)
	origin, err := h.loadOwnedAccount(ctx, principal, req.FromAccountID)
	if err != nil {
		return apperr.ToFiber(err)
	}
	dest, err := h.loadOwnedAccount(ctx, principal, req.ToAccountID)
	if err != nil {
		return apperr.ToFiber(err)
	}

	bonus := decimal.Zero
	if req.BonusPct != nil {
		bonus = money.Round2(decimal.NewFromFloat(*req.BonusPct))
	}

	res, err := Transfer(origin, money.Round2(decimal.NewFromFloat(req.Amount)), bonus)
	if err != nil {
		return apperr.ToFiber(err)
	}

	return c.JSON(fiber.Map{
		"from_account_name":                          origin.Name,
		"to_account_name":                            dest.Name,
		"amount_to_transfer":                         res.AmountToTransfer,
		"origin_account_avg_cost_per_thousand":       res.OriginAvgCost,
		"bonus_percentage":                           res.BonusPct,
		"amount_to_receive_at_destination":           res.CreditedAmount,
		"estimated_cost_per_thousand_at_destination": res.DestCostPerK,
	})
}

func (h *Handler) SimulateSale(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	account, err := h.loadOwnedAccount(userContext(c), principal, req.AccountID)
	if err != nil {
		return apperr.ToFiber(err)
	}

	res, err := Sale(account,
		money.Round2(decimal.NewFromFloat(req.AmountToSell)),
		money.Round2(decimal.NewFromFloat(req.PricePerK)),
	)
	if err != nil {
		return apperr.ToFiber(err)
	}

	return c.JSON(fiber.Map{
		"loyalty_account_name":              account.Name,
		"current_balance":                   account.Balance,
		"current_average_cost_per_thousand": money.Round2(account.AverageCost.Decimal),
		"amount_to_sell":                    res.AmountToSell,
		"sale_price_per_1000_miles":         res.PricePerK,
		"total_estimated_sale_value":        res.SaleValue,
		"total_estimated_cost_value":        res.CostValue,
		"estimated_profit":                  res.Profit,
	})
}

// loadOwnedAccount reads current account state without locks; simulations
// tolerate whatever the read path sees.
func (h *Handler) loadOwnedAccount(ctx context.Context, principal uuid.UUID, rawID string) (*ledger.Account, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apperr.Validation("invalid account id")
	}

	var a ledger.Account
	err = h.Pool.QueryRow(ctx, `
		SELECT a.id, a.wallet_id, a.program_id, a.account_number, a.name,
		       a.current_balance, a.average_cost, a.last_updated, a.is_active, a.created_at
		FROM loyalty_accounts a
		JOIN wallets w ON w.id = a.wallet_id
		WHERE a.id = $1 AND w.user_id = $2`, id, principal,
	).Scan(
		&a.ID, &a.WalletID, &a.ProgramID, &a.Number, &a.Name,
		&a.Balance, &a.AverageCost, &a.LastUpdated, &a.Active, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("account not found or not owned by the current user")
		}
		return nil, err
	}
	return &a, nil
}

func extractUserID(c *fiber.Ctx) (uuid.UUID, error) {
	val := c.Locals("user_id")
	if val == nil {
		val = c.Locals("userID")
	}
	raw, _ := val.(string)
	return uuid.Parse(strings.TrimSpace(raw))
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
