package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"

	"github.com/concave-dev/guestbook/internal/validate"
)

const etherDecimals = 18

// ParseEther converts a decimal ether string such as "0.00001" to wei.
// Amounts finer than one wei are rejected rather than rounded.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if err := validate.EtherAmount(amount, "amount"); err != nil {
		return nil, err
	}

	whole, frac, _ := strings.Cut(amount, ".")

	wei, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount '%s'", amount)
	}
	wei.Mul(wei, big.NewInt(params.Ether))

	if frac != "" {
		frac += strings.Repeat("0", etherDecimals-len(frac))
		fracWei, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid ether amount '%s'", amount)
		}
		wei.Add(wei, fracWei)
	}

	return wei, nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
// Nil formats as "0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	whole, frac := new(big.Int).QuoRem(abs, big.NewInt(params.Ether), new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	fracStr = strings.Repeat("0", etherDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return sign + whole.String() + "." + fracStr
}
