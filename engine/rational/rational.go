// Package rational implements exact dungeon multipliers: arbitrary-precision
// fractions kept in lowest terms, plus a NaN state for unparseable input.
package rational

import (
	"math"
	"math/big"
	"strings"
)

// Rational is an immutable exact fraction. The zero value is NaN.
type Rational struct {
	r *big.Rat // nil means NaN
}

// One returns the multiplicative identity.
func One() Rational {
	return Rational{r: big.NewRat(1, 1)}
}

// FromInt returns n/1.
func FromInt(n int64) Rational {
	return Rational{r: big.NewRat(n, 1)}
}

// NaN returns the invalid value.
func NaN() Rational {
	return Rational{}
}

// Parse reads a decimal ("1.5", "-2", ".25") or a fraction ("3/2").
// Empty or malformed input yields NaN.
func Parse(s string) Rational {
	s = strings.TrimSpace(s)
	if s == "" {
		return NaN()
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, okN := new(big.Int).SetString(strings.TrimSpace(num), 10)
		d, okD := new(big.Int).SetString(strings.TrimSpace(den), 10)
		if !okN || !okD || d.Sign() == 0 {
			return NaN()
		}
		return Rational{r: new(big.Rat).SetFrac(n, d)}
	}
	if !isDecimal(s) {
		return NaN()
	}
	if s[0] == '.' {
		s = "0" + s
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return NaN()
	}
	return Rational{r: r}
}

// isDecimal accepts an optional sign, digits and at most one point.
// big.Rat.SetString alone would also accept exponents and "1/2" forms.
func isDecimal(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	digits, dots := 0, 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// IsNaN reports whether r is the invalid value.
func (r Rational) IsNaN() bool {
	return r.r == nil
}

// IsOne reports whether r is exactly 1.
func (r Rational) IsOne() bool {
	return r.r != nil && r.r.IsInt() && r.r.Num().IsInt64() && r.r.Num().Int64() == 1
}

// Equal reports exact equality. NaN equals nothing, itself included.
func (r Rational) Equal(o Rational) bool {
	if r.r == nil || o.r == nil {
		return false
	}
	return r.r.Cmp(o.r) == 0
}

// Mul returns r×o in lowest terms. NaN absorbs.
func (r Rational) Mul(o Rational) Rational {
	if r.r == nil || o.r == nil {
		return NaN()
	}
	return Rational{r: new(big.Rat).Mul(r.r, o.r)}
}

// Num returns the numerator, or 0 for NaN.
func (r Rational) Num() *big.Int {
	if r.r == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(r.r.Num())
}

// Denom returns the denominator, or 1 for NaN.
func (r Rational) Denom() *big.Int {
	if r.r == nil {
		return big.NewInt(1)
	}
	return new(big.Int).Set(r.r.Denom())
}

// Scale returns round(n×r), halves rounded away from zero. NaN scales to 0.
func (r Rational) Scale(n int) int {
	if r.r == nil {
		return 0
	}
	p := new(big.Rat).Mul(r.r, new(big.Rat).SetInt64(int64(n)))
	return roundRat(p)
}

// Float64 returns the nearest float, NaN for NaN.
func (r Rational) Float64() float64 {
	if r.r == nil {
		return math.NaN()
	}
	f, _ := r.r.Float64()
	return f
}

// String renders "n" for integers, "n/d" otherwise, and "NaN".
func (r Rational) String() string {
	if r.r == nil {
		return "NaN"
	}
	if r.r.IsInt() {
		return r.r.Num().String()
	}
	return r.r.Num().String() + "/" + r.r.Denom().String()
}

func roundRat(p *big.Rat) int {
	num := new(big.Int).Set(p.Num())
	den := p.Denom()
	neg := num.Sign() < 0
	num.Abs(num)
	// floor((2|num| + den) / 2den)
	num.Lsh(num, 1)
	num.Add(num, den)
	q := num.Quo(num, new(big.Int).Lsh(den, 1))
	if neg {
		q.Neg(q)
	}
	// Saturate instead of wrapping when the result does not fit an int.
	switch {
	case q.Cmp(maxInt) > 0:
		return math.MaxInt
	case q.Cmp(minInt) < 0:
		return math.MinInt
	}
	return int(q.Int64())
}

var (
	maxInt = big.NewInt(math.MaxInt)
	minInt = big.NewInt(math.MinInt)
)
