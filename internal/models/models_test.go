package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("DECA"))
	assert.True(t, ValidCategory("Guest"))
	assert.False(t, ValidCategory("deca")) // vocabulary is case-sensitive
	assert.False(t, ValidCategory(""))
	assert.False(t, ValidCategory("Robotics"))
}

func TestTotalCost(t *testing.T) {
	fee := decimal.RequireFromString("40.00")

	tests := []struct {
		count int
		want  string
	}{
		{0, "0.00"},
		{1, "40.00"},
		{2, "80.00"},
		{50, "2000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalCost(tt.count, fee).StringFixed(2))
	}
}

func TestTotalCostOddFee(t *testing.T) {
	// Exact decimal arithmetic: 0.10 x 3 is exactly 0.30.
	fee := decimal.RequireFromString("0.10")
	assert.Equal(t, "0.30", TotalCost(3, fee).StringFixed(2))
}

func TestDisplayName(t *testing.T) {
	a := &Advisor{FirstName: "Dana", LastName: "Reyes"}
	assert.Equal(t, "Dana Reyes", a.DisplayName())
}
