package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRecomputeAverageCost(t *testing.T) {
	cases := []struct {
		name        string
		balance     string
		avgCost     string
		addedAmount string
		addedCost   string
		want        string
	}{
		// 10000 units at 23.00/k plus 1000 free units dilutes the average.
		{"free credit dilutes", "10000", "23.00", "1000", "0", "20.91"},
		// 10000 at 23.00/k plus 5000 costing 60: (230+60)/15000*1000.
		{"paid credit", "10000", "23.00", "5000", "60", "19.33"},
		{"first credit sets average", "0", "0", "1000", "25", "25.00"},
		{"first credit free", "0", "0", "1000", "0", "0.00"},
		{"zero amount is no-op", "10000", "23.00", "0", "50", "23.00"},
		{"negative amount is no-op", "10000", "23.00", "-500", "0", "23.00"},
		// A negative balance swallowed by the credit leaves nothing to price.
		{"non-positive result balance", "-1000", "0", "500", "10", "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := RecomputeAverageCost(dec(c.balance), dec(c.avgCost), dec(c.addedAmount), dec(c.addedCost))
			if !got.Equal(dec(c.want)) {
				t.Fatalf("RecomputeAverageCost(%s, %s, %s, %s) = %s, want %s",
					c.balance, c.avgCost, c.addedAmount, c.addedCost, got, c.want)
			}
		})
	}
}

func TestAccountCredit(t *testing.T) {
	a := &Account{Balance: dec("10000"), AverageCost: decimal.NewNullDecimal(dec("23.00"))}

	a.Credit(dec("1000"), decimal.Zero)

	if !a.Balance.Equal(dec("11000")) {
		t.Fatalf("balance = %s, want 11000", a.Balance)
	}
	if !a.AverageCost.Valid || !a.AverageCost.Decimal.Equal(dec("20.91")) {
		t.Fatalf("average cost = %v, want 20.91", a.AverageCost)
	}
	if a.LastUpdated.IsZero() {
		t.Fatal("LastUpdated not set")
	}
}

func TestAccountCreditFromNullAverage(t *testing.T) {
	a := &Account{Balance: decimal.Zero}

	a.Credit(dec("2000"), dec("50"))

	if !a.AverageCost.Valid || !a.AverageCost.Decimal.Equal(dec("25.00")) {
		t.Fatalf("average cost = %v, want 25.00", a.AverageCost)
	}
}

func TestAccountDebitKeepsAverage(t *testing.T) {
	a := &Account{Balance: dec("10000"), AverageCost: decimal.NewNullDecimal(dec("23.00"))}

	a.Debit(dec("4000"))

	if !a.Balance.Equal(dec("6000")) {
		t.Fatalf("balance = %s, want 6000", a.Balance)
	}
	if !a.AverageCost.Decimal.Equal(dec("23.00")) {
		t.Fatalf("average cost changed to %s", a.AverageCost.Decimal)
	}
}

func TestAccountDebitPastZero(t *testing.T) {
	a := &Account{Balance: dec("100")}

	a.Debit(dec("150"))

	if !a.Balance.Equal(dec("-50")) {
		t.Fatalf("balance = %s, want -50", a.Balance)
	}
}

func TestAccountRestore(t *testing.T) {
	a := &Account{Balance: dec("6000"), AverageCost: decimal.NewNullDecimal(dec("20.91"))}

	a.Restore(dec("4000"))
	if !a.Balance.Equal(dec("10000")) {
		t.Fatalf("balance = %s, want 10000", a.Balance)
	}

	a.Restore(dec("-1000"))
	if !a.Balance.Equal(dec("9000")) {
		t.Fatalf("balance = %s, want 9000", a.Balance)
	}
	if !a.AverageCost.Decimal.Equal(dec("20.91")) {
		t.Fatalf("Restore touched average cost: %s", a.AverageCost.Decimal)
	}
}

func TestAverageCostOrZero(t *testing.T) {
	a := &Account{}
	if !a.AverageCostOrZero().IsZero() {
		t.Fatal("null average should read as zero")
	}
	a.AverageCost = decimal.NewNullDecimal(dec("12.33"))
	if !a.AverageCostOrZero().Equal(dec("12.33")) {
		t.Fatalf("AverageCostOrZero = %s", a.AverageCostOrZero())
	}
}

func TestCurrencyKind(t *testing.T) {
	if CurrencyPoints.String() != "Pontos" || CurrencyMiles.String() != "Milhas" {
		t.Fatal("currency names wrong")
	}
	if CurrencyKind(3).Valid() || CurrencyKind(0).Valid() {
		t.Fatal("out-of-range currency reported valid")
	}
	if CurrencyKind(9).String() != "Desconhecido" {
		t.Fatal("unknown currency name wrong")
	}
}
