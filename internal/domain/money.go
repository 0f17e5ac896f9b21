package domain

import "github.com/shopspring/decimal"

// moneyScale is the fixed number of fractional digits carried by every
// Money value, per spec: monetary values use a fixed decimal scale and
// are never represented as float64.
const moneyScale = 4

// Money is a fixed-scale decimal amount. Zero value is zero.
type Money struct {
	d decimal.Decimal
}

// NewMoney builds a Money from a decimal, rounding to the fixed scale.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(moneyScale)}
}

// MoneyFromFloat builds a Money from a float64. Only meant for ingesting
// external data (e.g. legacy price feeds); internal arithmetic should
// stay in Money/decimal.Decimal.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// MoneyFromInt builds a Money from an integer amount (whole units).
func MoneyFromInt(i int64) Money {
	return NewMoney(decimal.NewFromInt(i))
}

// Zero is the additive identity.
func Zero() Money { return Money{} }

func (m Money) Add(o Money) Money    { return NewMoney(m.d.Add(o.d)) }
func (m Money) Sub(o Money) Money    { return NewMoney(m.d.Sub(o.d)) }
func (m Money) Mul(o Money) Money    { return NewMoney(m.d.Mul(o.d)) }
func (m Money) Neg() Money           { return NewMoney(m.d.Neg()) }
func (m Money) IsZero() bool         { return m.d.IsZero() }
func (m Money) IsNegative() bool     { return m.d.IsNegative() }
func (m Money) Cmp(o Money) int      { return m.d.Cmp(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

// MulQty multiplies a money amount (e.g. unit cost) by an integer
// quantity, the common case for line totals.
func (m Money) MulQty(qty int) Money {
	return NewMoney(m.d.Mul(decimal.NewFromInt(int64(qty))))
}

// DivInt divides a money amount by a positive integer divisor, the
// common case for per-unit/per-day cost breakdowns. Returns Zero if
// divisor <= 0.
func (m Money) DivInt(divisor int) Money {
	if divisor <= 0 {
		return Zero()
	}
	return NewMoney(m.d.Div(decimal.NewFromInt(int64(divisor))))
}

// Float64 exposes the amount as float64 for display/serialization only.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

func (m Money) String() string { return m.d.StringFixed(moneyScale) }

// MarshalJSON renders the amount as a JSON number with fixed scale.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(moneyScale)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.d = d.Round(moneyScale)
	return nil
}

// Value returns the underlying decimal, for repositories that need to
// bind it to a driver.Valuer-aware column.
func (m Money) Value() decimal.Decimal { return m.d }
