package txn

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/audit"
	"github.com/haniellourenco/EasyMiles/internal/money"
)

type Handler struct {
	Svc *Service
	DB  *pgxpool.Pool // audit trail only
}

func NewHandler(svc *Service, db *pgxpool.Pool) *Handler {
	return &Handler{Svc: svc, DB: db}
}

type transactionRequest struct {
	Kind        int      `json:"transaction_type"`
	Amount      float64  `json:"amount"`
	Cost        *float64 `json:"cost"`
	Origin      *string  `json:"origin_account"`
	Destination *string  `json:"destination_account"`
	BonusPct    *float64 `json:"bonus_percentage"`
	Description *string  `json:"description"`
	Date        string   `json:"transaction_date"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	in, err := parseRequest(c)
	if err != nil {
		return apperr.ToFiber(err)
	}

	t, err := h.Svc.Create(userContext(c), principal, in)
	if err != nil {
		return apperr.ToFiber(err)
	}

	h.writeAudit(userContext(c), principal, "transaction.create", t.ID)
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	in, err := parseRequest(c)
	if err != nil {
		return apperr.ToFiber(err)
	}

	t, err := h.Svc.Update(userContext(c), principal, id, in)
	if err != nil {
		return apperr.ToFiber(err)
	}

	h.writeAudit(userContext(c), principal, "transaction.update", t.ID)
	return c.JSON(t)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	if err := h.Svc.Delete(userContext(c), principal, id); err != nil {
		return apperr.ToFiber(err)
	}

	h.writeAudit(userContext(c), principal, "transaction.delete", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	t, err := h.Svc.Get(userContext(c), principal, id)
	if err != nil {
		return apperr.ToFiber(err)
	}
	return c.JSON(t)
}

func (h *Handler) List(c *fiber.Ctx) error {
	principal, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var accountID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("account")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
		}
		accountID = &id
	}

	items, err := h.Svc.List(userContext(c), principal, accountID, c.QueryInt("limit"))
	if err != nil {
		return apperr.ToFiber(err)
	}
	return c.JSON(items)
}

func parseRequest(c *fiber.Ctx) (Input, error) {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return Input{}, apperr.Validation("invalid body")
	}

	in := Input{
		Kind:        Kind(req.Kind),
		Amount:      dec2(req.Amount),
		Description: req.Description,
	}

	if req.Cost != nil {
		in.Cost = decimal.NewNullDecimal(dec2(*req.Cost))
	}
	if req.BonusPct != nil {
		in.BonusPct = decimal.NewNullDecimal(dec2(*req.BonusPct))
	}

	var err error
	if in.OriginID, err = parseAccountRef(req.Origin); err != nil {
		return Input{}, apperr.Validation("invalid origin_account")
	}
	if in.DestinationID, err = parseAccountRef(req.Destination); err != nil {
		return Input{}, apperr.Validation("invalid destination_account")
	}

	in.Date = time.Now().UTC()
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return Input{}, apperr.Validation("transaction_date must be RFC3339 or YYYY-MM-DD")
		}
		in.Date = parsed
	}
	return in, nil
}

// dec2 snaps a JSON number onto the NUMERIC(12,2) grid the ledger stores.
func dec2(v float64) decimal.Decimal {
	return money.Round2(decimal.NewFromFloat(v))
}

func parseAccountRef(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *Handler) writeAudit(ctx context.Context, principal uuid.UUID, action string, entityID uuid.UUID) {
	uid := principal.String()
	eid := entityID.String()
	// best-effort: an audit failure never fails the request
	_ = audit.Write(ctx, h.DB, audit.Entry{
		UserID:     &uid,
		Action:     action,
		EntityType: "points_transaction",
		EntityID:   &eid,
	})
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
