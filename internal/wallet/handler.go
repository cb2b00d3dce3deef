package wallet

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
	"github.com/haniellourenco/EasyMiles/internal/money"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type walletRequest struct {
	Name string `json:"wallet_name"`
}

func (h *Handler) CreateWallet(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req walletRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "wallet_name required")
	}

	w, err := h.Repo.InsertWallet(userContext(c), userID, req.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create wallet")
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (h *Handler) ListWallets(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	wallets, err := h.Repo.ListWallets(userContext(c), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch wallets")
	}
	return c.JSON(wallets)
}

func (h *Handler) RenameWallet(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	walletID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	var req walletRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "wallet_name required")
	}

	if err := h.Repo.RenameWallet(userContext(c), userID, walletID, req.Name); err != nil {
		return apperr.ToFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteWallet(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	walletID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	if err := h.Repo.DeleteWallet(userContext(c), userID, walletID); err != nil {
		return apperr.ToFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type accountRequest struct {
	WalletID      string   `json:"wallet"`
	ProgramID     string   `json:"program"`
	Number        string   `json:"account_number"`
	Name          string   `json:"name"`
	InitialAmount *float64 `json:"current_balance"`
	AverageCost   *float64 `json:"average_cost"`
}

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req accountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	// nested route form: wallet id comes from the path
	if raw := c.Params("walletID"); raw != "" {
		req.WalletID = raw
	}

	walletID, err := uuid.Parse(strings.TrimSpace(req.WalletID))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}
	programID, err := uuid.Parse(strings.TrimSpace(req.ProgramID))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid program id")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}

	a := &ledger.Account{
		ID:          uuid.New(),
		WalletID:    walletID,
		ProgramID:   programID,
		Number:      strings.TrimSpace(req.Number),
		Name:        req.Name,
		Balance:     decimal.Zero,
		LastUpdated: time.Now().UTC(),
		Active:      true,
	}
	if req.InitialAmount != nil {
		a.Balance = money.Round2(decimal.NewFromFloat(*req.InitialAmount))
	}
	if req.AverageCost != nil {
		a.AverageCost = decimal.NewNullDecimal(money.Round2(decimal.NewFromFloat(*req.AverageCost)))
	}

	if err := h.Repo.InsertAccount(userContext(c), userID, a); err != nil {
		return apperr.ToFiber(err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var walletID *uuid.UUID
	if raw := c.Params("walletID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
		}
		walletID = &id
	}

	accounts, err := h.Repo.ListAccounts(userContext(c), userID, walletID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch accounts")
	}
	return c.JSON(accounts)
}

func (h *Handler) GetAccount(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	a, err := h.Repo.GetAccount(userContext(c), userID, accountID)
	if err != nil {
		return apperr.ToFiber(err)
	}
	return c.JSON(a)
}

type accountUpdateRequest struct {
	Name   string `json:"name"`
	Number string `json:"account_number"`
}

func (h *Handler) UpdateAccount(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	var req accountUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}

	if err := h.Repo.UpdateAccountAttrs(userContext(c), userID, accountID, req.Name, strings.TrimSpace(req.Number)); err != nil {
		return apperr.ToFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeactivateAccount(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	if err := h.Repo.SetAccountActive(userContext(c), userID, accountID, false); err != nil {
		return apperr.ToFiber(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
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
