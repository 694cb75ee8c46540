package price

import "math/big"

// DefaultDecimals is the fallback ERC20 precision and the fixed-point scale
// of the internal price domain.
const DefaultDecimals = 18

var fixed18 = pow10(DefaultDecimals)

// Unit returns 1.0 in the 18-decimal fixed-point domain.
func Unit() *big.Int {
	return new(big.Int).Set(fixed18)
}

// Zero returns the zero price, the "unpriceable" marker of the domain.
func Zero() *big.Int {
	return new(big.Int)
}

func pow10(exp int) *big.Int {
	if exp <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

// scaleRatio returns 10^exp as an exact rational, valid for negative exponents.
func scaleRatio(exp int) *big.Rat {
	if exp >= 0 {
		return new(big.Rat).SetInt(pow10(exp))
	}
	return new(big.Rat).SetFrac(big.NewInt(1), pow10(-exp))
}

// mulScaleDiv computes a * 10^exp / b in integer arithmetic, truncating
// toward zero. A nil or zero divisor yields zero.
func mulScaleDiv(a *big.Int, exp int, b *big.Int) *big.Int {
	if a == nil || b == nil || b.Sign() == 0 {
		return new(big.Int)
	}
	if exp >= 0 {
		num := new(big.Int).Mul(a, pow10(exp))
		return num.Quo(num, b)
	}
	den := new(big.Int).Mul(b, pow10(-exp))
	return new(big.Int).Quo(a, den)
}

// Fixed18FromRat converts a decimal price to the fixed-point domain,
// truncating toward zero.
func Fixed18FromRat(r *big.Rat) *big.Int {
	if r == nil {
		return new(big.Int)
	}
	num := new(big.Int).Mul(r.Num(), fixed18)
	return num.Quo(num, r.Denom())
}

// RatFromFixed18 converts a fixed-point price to its decimal value.
func RatFromFixed18(p *big.Int) *big.Rat {
	if p == nil {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).Set(p), Unit())
}

// Amount converts a raw integer amount to a decimal using the precision.
func Amount(raw *big.Int, decimals uint8) *big.Rat {
	if raw == nil {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).Set(raw), pow10(int(decimals)))
}

// ParseDecimal parses a decimal string, clamping to zero on failure.
func ParseDecimal(input string) *big.Rat {
	if input == "" {
		return new(big.Rat)
	}
	r, ok := new(big.Rat).SetString(input)
	if !ok {
		return new(big.Rat)
	}
	return r
}

// FormatDecimal renders a rational with 18 fractional digits.
func FormatDecimal(r *big.Rat) string {
	if r == nil {
		return "0"
	}
	return r.FloatString(DefaultDecimals)
}
