package models

import "github.com/shopspring/decimal"

// TotalCost returns count x feePerPerson. Fees are exact decimals end to
// end; float arithmetic never touches money here.
func TotalCost(count int, feePerPerson decimal.Decimal) decimal.Decimal {
	return feePerPerson.Mul(decimal.NewFromInt(int64(count)))
}
