package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type latestUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type OverviewResponse struct {
	UsersTotal        int64        `json:"users_total"`
	WalletsTotal      int64        `json:"wallets_total"`
	AccountsTotal     int64        `json:"accounts_total"`
	TransactionsTotal int64        `json:"transactions_total"`
	ProgramsTotal     int64        `json:"programs_total"`
	LatestUsers       []latestUser `json:"latest_users"`
}

func (h *Handler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var resp OverviewResponse
	err := h.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM wallets),
			(SELECT COUNT(*) FROM loyalty_accounts),
			(SELECT COUNT(*) FROM points_transactions),
			(SELECT COUNT(*) FROM loyalty_programs)`,
	).Scan(&resp.UsersTotal, &resp.WalletsTotal, &resp.AccountsTotal,
		&resp.TransactionsTotal, &resp.ProgramsTotal)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed totals: "+err.Error())
	}

	rows, err := h.Pool.Query(ctx, `
		SELECT id::text, username, created_at::text
		FROM users
		ORDER BY created_at DESC
		LIMIT 20`)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users: "+err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var u latestUser
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed scan latest_users: "+err.Error())
		}
		resp.LatestUsers = append(resp.LatestUsers, u)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users rows: "+err.Error())
	}

	return c.JSON(resp)
}
