package reports

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/money"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

// StatementPDF renders the user's transactions within a date range as a PDF
// download. Defaults to the last 30 days.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	uidVal := c.Locals("user_id")
	if uidVal == nil {
		uidVal = c.Locals("userID")
	}
	userID, _ := uidVal.(string)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		end := time.Now()
		start := end.AddDate(0, 0, -29)
		from = start.Format("2006-01-02")
		to = end.Format("2006-01-02")
	}

	if _, err := time.Parse("2006-01-02", from); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}

	ctx := c.UserContext()
	rows, err := h.Pool.Query(ctx, `
SELECT t.id::text, t.transaction_type, t.amount, t.cost,
       COALESCE(oa.name, '-'), COALESCE(da.name, '-'),
       t.transaction_date::date::text
FROM points_transactions t
LEFT JOIN loyalty_accounts oa ON oa.id = t.origin_account_id
LEFT JOIN loyalty_accounts da ON da.id = t.destination_account_id
WHERE EXISTS (
    SELECT 1 FROM loyalty_accounts a
    JOIN wallets w ON w.id = a.wallet_id
    WHERE w.user_id = $1::uuid
      AND a.id IN (t.origin_account_id, t.destination_account_id)
)
  AND t.transaction_date::date BETWEEN $2::date AND $3::date
ORDER BY t.transaction_date DESC, t.created_at DESC
LIMIT 2000
`, userID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed statement: "+err.Error())
	}
	defer rows.Close()

	type row struct {
		ID     string
		Kind   int
		Amount decimal.Decimal
		Cost   decimal.NullDecimal
		Origin string
		Dest   string
		Date   string
	}

	var items []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.ID, &r.Kind, &r.Amount, &r.Cost, &r.Origin, &r.Dest, &r.Date); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan statement: "+err.Error())
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "statement rows: "+err.Error())
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "EASYMILES")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "EasyMiles - Extrato de Transacoes")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Periodo: "+from+" a "+to)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Usuario: "+maskID(userID))
	pdf.Ln(10)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(20, 20, 20)
		colW := []float64{34, 22, 40, 40, 24, 22}
		labels := []string{"TIPO", "DATA", "ORIGEM", "DESTINO", "PONTOS", "CUSTO"}
		aligns := []string{"C", "C", "L", "L", "R", "R"}
		for i := range labels {
			last := 0
			if i == len(labels)-1 {
				last = 1
			}
			pdf.CellFormat(colW[i], 8, labels[i], "1", last, aligns[i], true, 0, "")
		}
	}
	header()

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)

	colW := []float64{34, 22, 40, 40, 24, 22}
	maxRows := 200
	for i, it := range items {
		if i >= maxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "...truncado (muitas linhas)", "1", 1, "C", false, 0, "")
			break
		}

		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
			pdf.SetFont("Helvetica", "", 9)
		}

		cost := "-"
		if it.Cost.Valid {
			cost = money.String2(it.Cost.Decimal)
		}

		pdf.CellFormat(colW[0], 8, kindLabel(it.Kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, it.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 8, trimTo(it.Origin, 24), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, trimTo(it.Dest, 24), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 8, money.String2(it.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[5], 8, cost, "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Gerado por EasyMiles - "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "pdf build failed: "+err.Error())
	}

	filename := "easymiles-extrato-" + from + "-a-" + to + ".pdf"
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func kindLabel(kind int) string {
	switch kind {
	case 1:
		return "INCLUSAO"
	case 2:
		return "TRANSFERENCIA"
	case 3:
		return "RESGATE"
	case 4:
		return "VENDA"
	case 5:
		return "EXPIRACAO"
	case 6:
		return "AJUSTE"
	default:
		return "?"
	}
}

func maskID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}
