package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
	"github.com/haniellourenco/EasyMiles/internal/money"
	"github.com/haniellourenco/EasyMiles/internal/txn"
)

// Projections over current account state. Nothing here writes anything:
// both calculators use the same formulas as the effect engine but leave the
// accounts untouched.

type TransferResult struct {
	AmountToTransfer decimal.Decimal  `json:"amount_to_transfer"`
	BonusPct         decimal.Decimal  `json:"bonus_percentage"`
	CreditedAmount   decimal.Decimal  `json:"amount_to_receive_at_destination"`
	OriginAvgCost    decimal.Decimal  `json:"origin_account_avg_cost_per_thousand"`
	DestCostPerK     *decimal.Decimal `json:"estimated_cost_per_thousand_at_destination"`
}

type SaleResult struct {
	AmountToSell decimal.Decimal `json:"amount_to_sell"`
	PricePerK    decimal.Decimal `json:"sale_price_per_1000_miles"`
	SaleValue    decimal.Decimal `json:"total_estimated_sale_value"`
	CostValue    decimal.Decimal `json:"total_estimated_cost_value"`
	Profit       decimal.Decimal `json:"estimated_profit"`
}

// Transfer projects what a transfer of amount with bonusPct would credit at
// the destination and at what effective cost per 1000. DestCostPerK is nil
// when the origin has no cost basis to carry.
func Transfer(origin *ledger.Account, amount, bonusPct decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, apperr.Validation("amount must be positive")
	}
	if bonusPct.IsNegative() {
		return TransferResult{}, apperr.Validation("bonus_percentage must not be negative")
	}

	credited := txn.CreditedAmount(amount, bonusPct)
	originAvg := origin.AverageCostOrZero()

	res := TransferResult{
		AmountToTransfer: amount,
		BonusPct:         bonusPct,
		CreditedAmount:   credited,
		OriginAvgCost:    money.Round2(originAvg),
	}

	if originAvg.IsPositive() && credited.IsPositive() {
		carried := amount.Div(money.Thousand).Mul(originAvg)
		perK := money.Round2(carried.Div(credited).Mul(money.Thousand))
		res.DestCostPerK = &perK
	}
	return res, nil
}

// Sale projects the proceeds, cost basis and profit of selling amountToSell
// at pricePerK per 1000 units. Fails when the account has no defined average
// cost or not enough balance.
func Sale(account *ledger.Account, amountToSell, pricePerK decimal.Decimal) (SaleResult, error) {
	if !account.AverageCost.Valid {
		return SaleResult{}, apperr.Validation("account has no average cost to simulate against")
	}
	if !amountToSell.IsPositive() {
		return SaleResult{}, apperr.Validation("amount_to_sell must be positive")
	}
	if amountToSell.GreaterThan(account.Balance) {
		return SaleResult{}, apperr.InsufficientBalance("amount_to_sell exceeds the account balance")
	}
	if !pricePerK.IsPositive() {
		return SaleResult{}, apperr.Validation("sale price per 1000 must be positive")
	}

	saleValue := amountToSell.Div(money.Thousand).Mul(pricePerK)
	costValue := amountToSell.Div(money.Thousand).Mul(account.AverageCost.Decimal)

	return SaleResult{
		AmountToSell: amountToSell,
		PricePerK:    pricePerK,
		SaleValue:    money.Round2(saleValue),
		CostValue:    money.Round2(costValue),
		Profit:       money.Round2(saleValue.Sub(costValue)),
	}, nil
}
