package txn

import (
	"log"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
	"github.com/haniellourenco/EasyMiles/internal/money"
)

// The effect engine translates a transaction into mutations of the loaded
// account(s). Callers pass nil for an account that no longer exists; that
// side is skipped with a warning instead of failing the whole operation, so
// deleting an account does not brick the transactions that touched it.

// ApplyEffects applies the forward effect of t onto the loaded accounts.
func ApplyEffects(t *Transaction, origin, dest *ledger.Account) error {
	amount := t.AbsAmount()
	cost := t.CostOrZero()

	switch t.Kind {
	case KindManualCredit:
		if skipped(t, "destination", dest, t.DestinationID != nil) {
			return nil
		}
		dest.Credit(amount, cost)

	case KindTransfer:
		if skipped(t, "origin", origin, t.OriginID != nil) || skipped(t, "destination", dest, t.DestinationID != nil) {
			return nil
		}
		origin.Debit(amount)

		credited := CreditedAmount(amount, t.BonusOrZero())
		// Value leaving the origin at its average cost, plus any transfer
		// fee, spread over the bonus-inflated amount received. Bonus points
		// arrive as free inventory and dilute the destination's average.
		carried := amount.Div(money.Thousand).Mul(origin.AverageCostOrZero()).Add(cost)
		dest.Credit(credited, carried)

	case KindRedemption, KindSale, KindExpiration:
		if skipped(t, "origin", origin, t.OriginID != nil) {
			return nil
		}
		origin.Debit(amount)

	case KindAdjustment:
		if t.DestinationID != nil {
			if skipped(t, "destination", dest, true) {
				return nil
			}
			dest.Credit(amount, cost)
		} else if t.OriginID != nil {
			if skipped(t, "origin", origin, true) {
				return nil
			}
			origin.Debit(amount)
		}

	default:
		return apperr.Validation("unknown transaction type %d", int(t.Kind))
	}
	return nil
}

// ReverseEffects undoes the balance effect of t: credit where the forward
// path debited, debit where it credited, using the stored amount and the
// derived credited amount. Balances are restored exactly; the average cost
// is not, since the pre-apply value was never recorded.
func ReverseEffects(t *Transaction, origin, dest *ledger.Account) error {
	amount := t.AbsAmount()

	switch t.Kind {
	case KindManualCredit:
		if skipped(t, "destination", dest, t.DestinationID != nil) {
			return nil
		}
		dest.Restore(amount.Neg())

	case KindTransfer:
		credited := CreditedAmount(amount, t.BonusOrZero())
		if !skipped(t, "origin", origin, t.OriginID != nil) {
			origin.Restore(amount)
		}
		if !skipped(t, "destination", dest, t.DestinationID != nil) {
			dest.Restore(credited.Neg())
		}

	case KindRedemption, KindSale, KindExpiration:
		if skipped(t, "origin", origin, t.OriginID != nil) {
			return nil
		}
		origin.Restore(amount)

	case KindAdjustment:
		if t.DestinationID != nil {
			if skipped(t, "destination", dest, true) {
				return nil
			}
			dest.Restore(amount.Neg())
		} else if t.OriginID != nil {
			if skipped(t, "origin", origin, true) {
				return nil
			}
			origin.Restore(amount)
		}

	default:
		return apperr.Validation("unknown transaction type %d", int(t.Kind))
	}
	return nil
}

// skipped reports whether a side the transaction references failed to load,
// logging the skip. Sides the transaction never referenced are not logged.
func skipped(t *Transaction, side string, acc *ledger.Account, referenced bool) bool {
	if acc != nil {
		return false
	}
	if referenced {
		log.Printf("warn: transaction %s: %s account missing, effect skipped", t.ID, side)
	}
	return true
}
