package txn

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

// Input carries the caller-supplied fields of a transaction, already parsed
// into decimals by the handler layer.
type Input struct {
	Kind          Kind
	Amount        decimal.Decimal
	Cost          decimal.NullDecimal
	OriginID      *uuid.UUID
	DestinationID *uuid.UUID
	BonusPct      decimal.NullDecimal
	Description   *string
	Date          time.Time
}

// Service is the transaction lifecycle coordinator. Every write couples the
// record mutation with the matching effect-engine pass inside one store
// transaction, so a crash can never leave balances half-moved.
type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// Create validates, persists and applies a new transaction on behalf of
// principal. Every referenced account must belong to the principal.
func (s *Service) Create(ctx context.Context, principal uuid.UUID, in Input) (*Transaction, error) {
	t := fromInput(uuid.New(), in)
	if err := ValidateShape(t); err != nil {
		return nil, err
	}

	err := s.Store.InTx(ctx, func(uow UnitOfWork) error {
		if err := s.checkOwnsAll(ctx, uow, principal, t); err != nil {
			return err
		}
		if err := uow.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return s.applyLocked(ctx, uow, t, ApplyEffects)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces a transaction's fields: the stored effects are reversed
// using the pre-update snapshot, the row is rewritten, and the new effects
// are applied, all in one unit of work.
func (s *Service) Update(ctx context.Context, principal, id uuid.UUID, in Input) (*Transaction, error) {
	updated := fromInput(id, in)
	if err := ValidateShape(updated); err != nil {
		return nil, err
	}

	err := s.Store.InTx(ctx, func(uow UnitOfWork) error {
		old, err := uow.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkOwnsAny(ctx, uow, principal, old); err != nil {
			return err
		}
		if err := s.checkOwnsAll(ctx, uow, principal, updated); err != nil {
			return err
		}

		if err := s.applyLocked(ctx, uow, old, ReverseEffects); err != nil {
			return err
		}
		updated.CreatedAt = old.CreatedAt
		if err := uow.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		return s.applyLocked(ctx, uow, updated, ApplyEffects)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete reverses a transaction's effects and removes the record.
func (s *Service) Delete(ctx context.Context, principal, id uuid.UUID) error {
	return s.Store.InTx(ctx, func(uow UnitOfWork) error {
		t, err := uow.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkOwnsAny(ctx, uow, principal, t); err != nil {
			return err
		}
		if err := s.applyLocked(ctx, uow, t, ReverseEffects); err != nil {
			return err
		}
		return uow.DeleteTransaction(ctx, id)
	})
}

// Get loads a single transaction the principal owns a side of.
func (s *Service) Get(ctx context.Context, principal, id uuid.UUID) (*Transaction, error) {
	var t *Transaction
	err := s.Store.InTx(ctx, func(uow UnitOfWork) error {
		loaded, err := uow.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkOwnsAny(ctx, uow, principal, loaded); err != nil {
			return err
		}
		t = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the principal's transactions, newest first, optionally
// restricted to one account.
func (s *Service) List(ctx context.Context, principal uuid.UUID, accountID *uuid.UUID, limit int) ([]Transaction, error) {
	return s.Store.ListByUser(ctx, principal, accountID, limit)
}

// applyLocked locks the transaction's accounts in a deterministic order,
// runs the effect pass and saves whatever was touched. An account that
// vanished since the record was written is passed through as nil; the engine
// skips that side.
func (s *Service) applyLocked(ctx context.Context, uow UnitOfWork, t *Transaction, pass func(*Transaction, *ledger.Account, *ledger.Account) error) error {
	var origin, dest *ledger.Account

	for _, id := range lockOrder(t.OriginID, t.DestinationID) {
		acc, err := uow.LockAccount(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				log.Printf("warn: transaction %s: account %s vanished before locking", t.ID, id)
				continue
			}
			return err
		}
		if t.OriginID != nil && *t.OriginID == id {
			origin = acc
		}
		if t.DestinationID != nil && *t.DestinationID == id {
			dest = acc
		}
	}

	if err := pass(t, origin, dest); err != nil {
		return err
	}

	for _, acc := range []*ledger.Account{origin, dest} {
		if acc == nil {
			continue
		}
		if err := uow.SaveAccount(ctx, acc); err != nil {
			return err
		}
	}
	return nil
}

// lockOrder returns the distinct referenced account ids sorted by their byte
// representation, so two writes touching the same pair always lock in the
// same order.
func lockOrder(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == *id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, *id)
		}
	}
	if len(out) == 2 && out[1].String() < out[0].String() {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// checkOwnsAll requires every referenced account to belong to principal.
// Used on the incoming side of Create/Update, where the accounts must exist.
func (s *Service) checkOwnsAll(ctx context.Context, uow UnitOfWork, principal uuid.UUID, t *Transaction) error {
	for _, id := range []*uuid.UUID{t.OriginID, t.DestinationID} {
		if id == nil {
			continue
		}
		owner, err := uow.AccountOwner(ctx, *id)
		if err != nil {
			return err
		}
		if owner != principal {
			return apperr.Permission("account %s does not belong to the current user", id)
		}
	}
	return nil
}

// checkOwnsAny requires the principal to own at least one side of a stored
// transaction. The other side may belong to someone else or be gone.
func (s *Service) checkOwnsAny(ctx context.Context, uow UnitOfWork, principal uuid.UUID, t *Transaction) error {
	for _, id := range []*uuid.UUID{t.OriginID, t.DestinationID} {
		if id == nil {
			continue
		}
		owner, err := uow.AccountOwner(ctx, *id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return err
		}
		if owner == principal {
			return nil
		}
	}
	return apperr.Permission("transaction does not belong to the current user")
}

func fromInput(id uuid.UUID, in Input) *Transaction {
	return &Transaction{
		ID:            id,
		Kind:          in.Kind,
		Amount:        in.Amount.Abs(),
		Cost:          in.Cost,
		OriginID:      in.OriginID,
		DestinationID: in.DestinationID,
		BonusPct:      in.BonusPct,
		Description:   in.Description,
		Date:          in.Date,
	}
}
