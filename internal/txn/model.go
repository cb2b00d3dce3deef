package txn

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/money"
)

// Kind is the closed set of transaction categories. The integer codes are
// the wire/storage values.
type Kind int

const (
	KindManualCredit Kind = 1
	KindTransfer     Kind = 2
	KindRedemption   Kind = 3
	KindSale         Kind = 4
	KindExpiration   Kind = 5
	KindAdjustment   Kind = 6
)

func (k Kind) Valid() bool {
	return k >= KindManualCredit && k <= KindAdjustment
}

func (k Kind) String() string {
	switch k {
	case KindManualCredit:
		return "Inclusao manual"
	case KindTransfer:
		return "Transferencia"
	case KindRedemption:
		return "Resgate"
	case KindSale:
		return "Venda"
	case KindExpiration:
		return "Expiracao"
	case KindAdjustment:
		return "Ajuste de saldo"
	default:
		return "Desconhecido"
	}
}

// Transaction is a ledger entry. Amount is stored unsigned; the direction of
// the effect is implied entirely by Kind. Origin/Destination are nullable so
// records survive deletion of the account they touched.
type Transaction struct {
	ID            uuid.UUID           `json:"id"`
	Kind          Kind                `json:"transaction_type"`
	Amount        decimal.Decimal     `json:"amount"`
	Cost          decimal.NullDecimal `json:"cost"`
	OriginID      *uuid.UUID          `json:"origin_account"`
	DestinationID *uuid.UUID          `json:"destination_account"`
	BonusPct      decimal.NullDecimal `json:"bonus_percentage"`
	Description   *string             `json:"description,omitempty"`
	Date          time.Time           `json:"transaction_date"`
	CreatedAt     time.Time           `json:"created_at"`
}

// AbsAmount returns the unsigned amount. The sign of the stored value is
// never trusted.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

func (t *Transaction) CostOrZero() decimal.Decimal {
	if t.Cost.Valid {
		return t.Cost.Decimal
	}
	return decimal.Zero
}

func (t *Transaction) BonusOrZero() decimal.Decimal {
	if t.BonusPct.Valid {
		return t.BonusPct.Decimal
	}
	return decimal.Zero
}

// CreditedAmount is how many points actually land at a transfer destination:
// the transferred amount inflated by the bonus percentage, rounded half-up
// to 2 places.
func CreditedAmount(amount, bonusPct decimal.Decimal) decimal.Decimal {
	factor := decimal.New(1, 0).Add(bonusPct.Div(money.Hundred))
	return money.Round2(amount.Mul(factor))
}
