package program

import (
	"context"
	"strings"

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

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	programs, err := h.Repo.List(userContext(c), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch programs")
	}
	return c.JSON(programs)
}

type createRequest struct {
	Name       string   `json:"name"`
	Currency   int      `json:"currency_type"`
	CustomRate *float64 `json:"custom_rate"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}
	kind := ledger.CurrencyKind(req.Currency)
	if !kind.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "currency_type must be 1 (pontos) or 2 (milhas)")
	}

	p := &ledger.Program{Name: req.Name, Currency: kind}
	if req.CustomRate != nil {
		p.CustomRate = decimal.NewNullDecimal(money.Round2(decimal.NewFromFloat(*req.CustomRate)))
	}

	if err := h.Repo.Insert(userContext(c), userID, p); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create program")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) ToggleActive(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	programID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid program id")
	}

	p, err := h.Repo.ToggleActive(userContext(c), userID, programID)
	if err != nil {
		return apperr.ToFiber(err)
	}
	return c.JSON(p)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	programID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid program id")
	}

	if err := h.Repo.Delete(userContext(c), userID, programID); err != nil {
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
