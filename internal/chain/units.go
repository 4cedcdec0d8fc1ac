package chain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed point scale of token amounts.
const TokenDecimals = 18

// FormatUnits renders v / 10^decimals as the shortest decimal string,
// without trailing zeros. nil renders as "0".
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// FormatEther formats an 18-decimal amount.
func FormatEther(v *big.Int) string {
	return FormatUnits(v, TokenDecimals)
}

// ParseEther parses a decimal string into its 18-decimal integer form.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	scaled := d.Shift(TokenDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%s has more than %d decimals", s, TokenDecimals)
	}
	return scaled.BigInt(), nil
}
