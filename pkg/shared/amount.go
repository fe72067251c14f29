package shared

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// ParseEther converts a decimal ether amount such as "0.05" into wei.
func ParseEther(amount string) (*big.Int, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", amount, err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("ether amount cannot be negative: %s", amount)
	}

	wei := value.Shift(etherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("ether amount %s has more than %d decimals", amount, etherDecimals)
	}

	result, ok := new(big.Int).SetString(wei.Truncate(0).String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", amount)
	}
	return result, nil
}

// FormatEther renders a wei amount as a decimal ether string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}
