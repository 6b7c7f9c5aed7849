package store

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericFromBig converts a raw-unit integer balance to a NUMERIC parameter.
func numericFromBig(v *big.Int) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(v), Valid: true}
}

// numericFromDecimal converts a price to a NUMERIC parameter without going
// through float64.
func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// bigFromNumeric converts a scanned NUMERIC back to a raw-unit integer.
// Balance columns are declared with scale 0, so a fractional value is a
// schema violation, not something to round.
func bigFromNumeric(n pgtype.Numeric) (*big.Int, error) {
	if !n.Valid {
		return nil, fmt.Errorf("null balance")
	}
	if n.NaN {
		return nil, fmt.Errorf("NaN balance")
	}
	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp == 0:
		return v, nil
	case n.Exp > 0:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		return v.Mul(v, scale), nil
	default:
		return nil, fmt.Errorf("fractional balance %s x 10^%d", n.Int, n.Exp)
	}
}
