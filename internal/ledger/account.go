package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/money"
)

// CurrencyKind is the unit a loyalty program is denominated in.
type CurrencyKind int

const (
	CurrencyPoints CurrencyKind = 1
	CurrencyMiles  CurrencyKind = 2
)

func (k CurrencyKind) String() string {
	switch k {
	case CurrencyPoints:
		return "Pontos"
	case CurrencyMiles:
		return "Milhas"
	default:
		return "Desconhecido"
	}
}

func (k CurrencyKind) Valid() bool {
	return k == CurrencyPoints || k == CurrencyMiles
}

// Program is a loyalty program (Smiles, Latam Pass, ...). CustomRate is the
// estimated market value per 1000 units, used only by the summary.
type Program struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Currency    CurrencyKind        `json:"currency_type"`
	CustomRate  decimal.NullDecimal `json:"custom_rate"`
	Active      bool                `json:"is_active"`
	UserCreated bool                `json:"is_user_created"`
	CreatedBy   *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Wallet groups a user's loyalty accounts.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"wallet_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is the ledger's unit of state: a balance in some loyalty program
// plus the weighted-average acquisition cost per 1000 units. AverageCost is
// null until the first cost-bearing credit.
//
// Balance is intended to stay >= 0 but the data layer does not enforce it;
// a debit past zero goes through and leaves a negative balance.
type Account struct {
	ID          uuid.UUID           `json:"id"`
	WalletID    uuid.UUID           `json:"wallet"`
	ProgramID   uuid.UUID           `json:"program"`
	Number      string              `json:"account_number"`
	Name        string              `json:"name"`
	Balance     decimal.Decimal     `json:"current_balance"`
	AverageCost decimal.NullDecimal `json:"average_cost"`
	LastUpdated time.Time           `json:"last_updated"`
	Active      bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
}

// AverageCostOrZero treats an unset average cost as 0.00, which is how every
// formula in the engine consumes it.
func (a *Account) AverageCostOrZero() decimal.Decimal {
	if a.AverageCost.Valid {
		return a.AverageCost.Decimal
	}
	return decimal.Zero
}

// Credit adds amount to the balance and folds cost into the weighted-average
// acquisition cost. amount <= 0 leaves the average untouched.
func (a *Account) Credit(amount, cost decimal.Decimal) {
	newAvg := RecomputeAverageCost(a.Balance, a.AverageCostOrZero(), amount, cost)
	a.AverageCost = decimal.NewNullDecimal(newAvg)
	a.Balance = a.Balance.Add(amount)
	a.LastUpdated = time.Now().UTC()
}

// Debit subtracts amount from the balance. The average cost of the remaining
// units is unchanged: consumed units leave at the current average, so the
// survivors keep the same per-unit basis.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
	a.LastUpdated = time.Now().UTC()
}

// Restore adjusts the balance by delta, positive or negative, without
// touching the average cost. Reversal uses it: the pre-transaction average is
// never snapshotted, so undoing a transaction can only put the points back.
func (a *Account) Restore(delta decimal.Decimal) {
	a.Balance = a.Balance.Add(delta)
	a.LastUpdated = time.Now().UTC()
}

// RecomputeAverageCost returns the new weighted-average cost per 1000 units
// after crediting addedAmount at a total cost of addedCost.
//
//	oldTotalCost = (balance / 1000) * avgCost
//	newAvg       = (oldTotalCost + addedCost) / (balance + addedAmount) * 1000
//
// Rounded half-up to 2 places only at the end. addedAmount <= 0 is a no-op.
func RecomputeAverageCost(balance, avgCost, addedAmount, addedCost decimal.Decimal) decimal.Decimal {
	if !addedAmount.IsPositive() {
		return avgCost
	}

	oldTotalCost := balance.Div(money.Thousand).Mul(avgCost)
	newTotalCost := oldTotalCost.Add(addedCost)
	newBalance := balance.Add(addedAmount)

	if newBalance.IsPositive() {
		return money.Round2(newTotalCost.Div(newBalance).Mul(money.Thousand))
	}
	return decimal.Zero
}
