package simulation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func account(balance, avgCost string) *ledger.Account {
	a := &ledger.Account{Balance: dec(balance)}
	if avgCost != "" {
		a.AverageCost = decimal.NewNullDecimal(dec(avgCost))
	}
	return a
}

func TestTransfer(t *testing.T) {
	origin := account("10000", "23.00")

	res, err := Transfer(origin, dec("2000"), dec("100"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if !res.CreditedAmount.Equal(dec("4000")) {
		t.Fatalf("credited = %s, want 4000", res.CreditedAmount)
	}
	if !res.OriginAvgCost.Equal(dec("23.00")) {
		t.Fatalf("origin avg = %s, want 23.00", res.OriginAvgCost)
	}
	// 2000/1000*23.00 = 46.00 spread over 4000 units = 11.50 per 1000.
	if res.DestCostPerK == nil || !res.DestCostPerK.Equal(dec("11.50")) {
		t.Fatalf("dest cost per 1000 = %v, want 11.50", res.DestCostPerK)
	}
}

func TestTransferNoCostBasis(t *testing.T) {
	origin := account("10000", "")

	res, err := Transfer(origin, dec("2000"), dec("50"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !res.CreditedAmount.Equal(dec("3000")) {
		t.Fatalf("credited = %s, want 3000", res.CreditedAmount)
	}
	if res.DestCostPerK != nil {
		t.Fatalf("dest cost per 1000 = %s, want nil", *res.DestCostPerK)
	}
}

func TestTransferValidation(t *testing.T) {
	origin := account("10000", "23.00")

	if _, err := Transfer(origin, decimal.Zero, decimal.Zero); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := Transfer(origin, dec("100"), dec("-10")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative bonus: got %v", err)
	}
}

func TestTransferIsSideEffectFree(t *testing.T) {
	origin := account("10000", "23.00")

	if _, err := Transfer(origin, dec("2000"), dec("100")); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !origin.Balance.Equal(dec("10000")) {
		t.Fatalf("balance mutated to %s", origin.Balance)
	}
	if !origin.AverageCost.Decimal.Equal(dec("23.00")) {
		t.Fatalf("average cost mutated to %s", origin.AverageCost.Decimal)
	}
}

func TestSale(t *testing.T) {
	acc := account("5000", "10.00")

	res, err := Sale(acc, dec("2000"), dec("25"))
	if err != nil {
		t.Fatalf("Sale: %v", err)
	}
	if !res.SaleValue.Equal(dec("50.00")) {
		t.Fatalf("sale value = %s, want 50.00", res.SaleValue)
	}
	if !res.CostValue.Equal(dec("20.00")) {
		t.Fatalf("cost value = %s, want 20.00", res.CostValue)
	}
	if !res.Profit.Equal(dec("30.00")) {
		t.Fatalf("profit = %s, want 30.00", res.Profit)
	}
}

func TestSaleAtLoss(t *testing.T) {
	acc := account("10000", "23.00")

	res, err := Sale(acc, dec("4000"), dec("17"))
	if err != nil {
		t.Fatalf("Sale: %v", err)
	}
	if !res.Profit.Equal(dec("-24.00")) {
		t.Fatalf("profit = %s, want -24.00", res.Profit)
	}
}

func TestSaleExceedsBalance(t *testing.T) {
	acc := account("5000", "10.00")

	_, err := Sale(acc, dec("6000"), dec("25"))
	if !errors.Is(err, apperr.ErrInsufficientBalance) {
		t.Fatalf("got %v, want insufficient balance", err)
	}
	if !acc.Balance.Equal(dec("5000")) {
		t.Fatalf("balance mutated to %s", acc.Balance)
	}
}

func TestSaleRequiresCostBasis(t *testing.T) {
	acc := account("5000", "")

	if _, err := Sale(acc, dec("1000"), dec("25")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestSaleValidation(t *testing.T) {
	acc := account("5000", "10.00")

	if _, err := Sale(acc, decimal.Zero, dec("25")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := Sale(acc, dec("1000"), decimal.Zero); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero price: got %v", err)
	}
}
