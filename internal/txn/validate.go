package txn

import (
	"github.com/haniellourenco/EasyMiles/internal/apperr"
)

// ValidateShape enforces the origin/destination combination each kind
// requires, before the effect engine ever sees the record:
//
//	ManualCredit                    destination only
//	Transfer                        both, and they must differ
//	Redemption, Sale, Expiration    origin only
//	Adjustment                      exactly one of either
func ValidateShape(t *Transaction) error {
	if !t.Kind.Valid() {
		return apperr.Validation("unknown transaction type %d", int(t.Kind))
	}
	if !t.Amount.IsPositive() {
		return apperr.Validation("amount must be positive")
	}
	if t.Cost.Valid && t.Cost.Decimal.IsNegative() {
		return apperr.Validation("cost must not be negative")
	}
	if t.BonusPct.Valid && t.BonusPct.Decimal.IsNegative() {
		return apperr.Validation("bonus_percentage must not be negative")
	}
	if t.OriginID == nil && t.DestinationID == nil {
		return apperr.Validation("at least one account must be set")
	}

	switch t.Kind {
	case KindManualCredit:
		if t.DestinationID == nil {
			return apperr.Validation("destination account is required for %q", t.Kind)
		}
		if t.OriginID != nil {
			return apperr.Validation("origin account must not be set for %q", t.Kind)
		}
	case KindTransfer:
		if t.OriginID == nil || t.DestinationID == nil {
			return apperr.Validation("origin and destination accounts are required for %q", t.Kind)
		}
		if *t.OriginID == *t.DestinationID {
			return apperr.Validation("origin and destination must differ for %q", t.Kind)
		}
	case KindRedemption, KindSale, KindExpiration:
		if t.OriginID == nil {
			return apperr.Validation("origin account is required for %q", t.Kind)
		}
		if t.DestinationID != nil {
			return apperr.Validation("destination account must not be set for %q", t.Kind)
		}
	case KindAdjustment:
		if t.OriginID != nil && t.DestinationID != nil {
			return apperr.Validation("set only one account for %q", t.Kind)
		}
	}
	return nil
}
