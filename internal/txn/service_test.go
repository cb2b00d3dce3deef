package txn

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

// memStore is an in-memory Store with transactional semantics: InTx works on
// a copy and publishes it only when fn succeeds, mirroring the rollback the
// database gives the real store.
type memStore struct {
	accounts map[uuid.UUID]*ledger.Account
	owners   map[uuid.UUID]uuid.UUID
	txns     map[uuid.UUID]*Transaction
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]*ledger.Account),
		owners:   make(map[uuid.UUID]uuid.UUID),
		txns:     make(map[uuid.UUID]*Transaction),
	}
}

func (m *memStore) addAccount(owner uuid.UUID, balance, avgCost string) *ledger.Account {
	a := &ledger.Account{ID: uuid.New(), Balance: decimal.RequireFromString(balance), Active: true}
	if avgCost != "" {
		a.AverageCost = decimal.NewNullDecimal(decimal.RequireFromString(avgCost))
	}
	m.accounts[a.ID] = a
	m.owners[a.ID] = owner
	return a
}

func (m *memStore) InTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	u := &memUnit{
		accounts: make(map[uuid.UUID]*ledger.Account, len(m.accounts)),
		owners:   m.owners,
		txns:     make(map[uuid.UUID]*Transaction, len(m.txns)),
	}
	for id, a := range m.accounts {
		cp := *a
		u.accounts[id] = &cp
	}
	for id, t := range m.txns {
		cp := *t
		u.txns[id] = &cp
	}

	if err := fn(u); err != nil {
		return err
	}
	m.accounts = u.accounts
	m.txns = u.txns
	return nil
}

func (m *memStore) ListByUser(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID, limit int) ([]Transaction, error) {
	var out []Transaction
	for _, t := range m.txns {
		out = append(out, *t)
	}
	return out, nil
}

type memUnit struct {
	accounts map[uuid.UUID]*ledger.Account
	owners   map[uuid.UUID]uuid.UUID
	txns     map[uuid.UUID]*Transaction
}

func (u *memUnit) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	t, ok := u.txns[id]
	if !ok {
		return nil, apperr.NotFound("transaction not found")
	}
	cp := *t
	return &cp, nil
}

func (u *memUnit) InsertTransaction(ctx context.Context, t *Transaction) error {
	t.CreatedAt = time.Now().UTC()
	cp := *t
	u.txns[t.ID] = &cp
	return nil
}

func (u *memUnit) UpdateTransaction(ctx context.Context, t *Transaction) error {
	if _, ok := u.txns[t.ID]; !ok {
		return apperr.NotFound("transaction not found")
	}
	cp := *t
	u.txns[t.ID] = &cp
	return nil
}

func (u *memUnit) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, ok := u.txns[id]; !ok {
		return apperr.NotFound("transaction not found")
	}
	delete(u.txns, id)
	return nil
}

func (u *memUnit) LockAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	a, ok := u.accounts[id]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	return a, nil
}

func (u *memUnit) SaveAccount(ctx context.Context, a *ledger.Account) error {
	u.accounts[a.ID] = a
	return nil
}

func (u *memUnit) AccountOwner(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	owner, ok := u.owners[accountID]
	if !ok {
		return uuid.Nil, apperr.NotFound("account not found")
	}
	return owner, nil
}

func TestServiceCreateTransfer(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	origin := store.addAccount(user, "10000", "23.00")
	dest := store.addAccount(user, "5000", "10.00")
	svc := NewService(store)

	created, err := svc.Create(context.Background(), user, Input{
		Kind:          KindTransfer,
		Amount:        dec("2000"),
		Cost:          ndec("15"),
		BonusPct:      ndec("100"),
		OriginID:      &origin.ID,
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("8000")))
	require.True(t, store.accounts[dest.ID].Balance.Equal(dec("9000")))
	require.True(t, store.accounts[dest.ID].AverageCost.Decimal.Equal(dec("12.33")))
	require.Len(t, store.txns, 1)
}

func TestServiceCreateRejectsInvalidShape(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	origin := store.addAccount(user, "10000", "23.00")
	svc := NewService(store)

	_, err := svc.Create(context.Background(), user, Input{
		Kind:     KindTransfer,
		Amount:   dec("2000"),
		OriginID: &origin.ID,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Empty(t, store.txns)
	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("10000")))
}

func TestServiceCreateRejectsForeignAccount(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	other := uuid.New()
	origin := store.addAccount(user, "10000", "23.00")
	foreign := store.addAccount(other, "5000", "10.00")
	svc := NewService(store)

	_, err := svc.Create(context.Background(), user, Input{
		Kind:          KindTransfer,
		Amount:        dec("2000"),
		OriginID:      &origin.ID,
		DestinationID: &foreign.ID,
	})
	require.ErrorIs(t, err, apperr.ErrPermission)
	// Nothing committed: no record, no balance movement on either side.
	require.Empty(t, store.txns)
	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("10000")))
	require.True(t, store.accounts[foreign.ID].Balance.Equal(dec("5000")))
}

func TestServiceUpdateReversesThenReapplies(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	dest := store.addAccount(user, "10000", "23.00")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, user, Input{
		Kind:          KindManualCredit,
		Amount:        dec("1000"),
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)
	require.True(t, store.accounts[dest.ID].Balance.Equal(dec("11000")))

	updated, err := svc.Update(ctx, user, created.ID, Input{
		Kind:          KindManualCredit,
		Amount:        dec("3000"),
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	// 11000 - 1000 (reversal) + 3000 (new effect)
	require.True(t, store.accounts[dest.ID].Balance.Equal(dec("13000")))
}

func TestServiceUpdateCanMoveAccounts(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	first := store.addAccount(user, "0", "")
	second := store.addAccount(user, "0", "")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, user, Input{
		Kind:          KindManualCredit,
		Amount:        dec("500"),
		DestinationID: &first.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, user, created.ID, Input{
		Kind:          KindManualCredit,
		Amount:        dec("500"),
		DestinationID: &second.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)

	require.True(t, store.accounts[first.ID].Balance.IsZero())
	require.True(t, store.accounts[second.ID].Balance.Equal(dec("500")))
}

func TestServiceUpdateForeignTransaction(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	intruder := uuid.New()
	dest := store.addAccount(owner, "0", "")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, Input{
		Kind:          KindManualCredit,
		Amount:        dec("500"),
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, intruder, created.ID, Input{
		Kind:          KindManualCredit,
		Amount:        dec("999"),
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.ErrorIs(t, err, apperr.ErrPermission)
	require.True(t, store.accounts[dest.ID].Balance.Equal(dec("500")))
}

func TestServiceDelete(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	origin := store.addAccount(user, "10000", "23.00")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, user, Input{
		Kind:     KindSale,
		Amount:   dec("4000"),
		Cost:     ndec("0"),
		OriginID: &origin.ID,
		Date:     time.Now(),
	})
	require.NoError(t, err)
	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("6000")))

	require.NoError(t, svc.Delete(ctx, user, created.ID))
	require.Empty(t, store.txns)
	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("10000")))
	// Reversal restores the balance; the average is whatever was last stored.
	require.True(t, store.accounts[origin.ID].AverageCost.Decimal.Equal(dec("23.00")))
}

func TestServiceDeleteMissing(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestServiceDeleteWithVanishedAccount(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	origin := store.addAccount(user, "10000", "23.00")
	dest := store.addAccount(user, "5000", "10.00")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, user, Input{
		Kind:          KindTransfer,
		Amount:        dec("2000"),
		BonusPct:      ndec("0"),
		OriginID:      &origin.ID,
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)

	// The destination account is deleted out from under the record. Deleting
	// the transaction must still succeed; the missing side is skipped and the
	// surviving origin still gets its points back.
	delete(store.accounts, dest.ID)
	delete(store.owners, dest.ID)

	require.NoError(t, svc.Delete(ctx, user, created.ID))
	require.Empty(t, store.txns)
	require.True(t, store.accounts[origin.ID].Balance.Equal(dec("10000")))
}

func TestServiceGet(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	dest := store.addAccount(user, "0", "")
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, user, Input{
		Kind:          KindManualCredit,
		Amount:        dec("100"),
		DestinationID: &dest.ID,
		Date:          time.Now(),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	require.ErrorIs(t, err, apperr.ErrPermission)
}

func TestLockOrderDeterministic(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	first := lockOrder(&a, &b)
	second := lockOrder(&b, &a)
	require.Equal(t, first, second)
	require.Len(t, first, 2)

	require.Len(t, lockOrder(&a, &a), 1)
	require.Len(t, lockOrder(nil, &a), 1)
	require.Empty(t, lockOrder(nil, nil))
}
