package sitebook

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type number interface {
	float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Amount is an exact cash value. Amounts carry no currency, the book is
// kept in a single currency chosen by configuration.
type Amount struct {
	value decimal.Decimal
}

// A creates an Amount.
func A[T number](value T) Amount { return Amount{value: newDecimal(value)} }

// ParseAmount parses a decimal string such as "1250.50".
func ParseAmount(s string) (Amount, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: v}, nil
}

func (a Amount) Add(b Amount) Amount                { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount                { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount                        { return Amount{value: a.value.Neg()} }
func (a Amount) Mul(q Quantity) Amount              { return Amount{value: a.value.Mul(q.value)} }
func (a Amount) Equal(b Amount) bool                { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool             { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool          { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool                       { return a.value.IsZero() }
func (a Amount) IsPositive() bool                   { return a.value.IsPositive() }
func (a Amount) IsNegative() bool                   { return a.value.IsNegative() }
func (a Amount) String() string                     { return a.value.String() }
func (a Amount) Decimal() decimal.Decimal           { return a.value }
func (a Amount) MarshalJSON() ([]byte, error)       { return a.value.MarshalJSON() }
func (a *Amount) UnmarshalJSON(b []byte) error      { return a.value.UnmarshalJSON(b) }
func (a Amount) Round(places int32) Amount          { return Amount{value: a.value.Round(places)} }
func (a Amount) Shift(places int32) decimal.Decimal { return a.value.Shift(places) }

// Quantity is an exact amount of a material, in the material's unit.
type Quantity struct {
	value decimal.Decimal
}

// Q creates a Quantity.
func Q[T number](value T) Quantity { return Quantity{value: newDecimal(value)} }

// ParseQuantity parses a decimal string such as "12.5".
func ParseQuantity(s string) (Quantity, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: v}, nil
}

func (q Quantity) Add(p Quantity) Quantity       { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity       { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Neg() Quantity                 { return Quantity{value: q.value.Neg()} }
func (q Quantity) Equal(p Quantity) bool         { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool      { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool   { return q.value.GreaterThan(p.value) }
func (q Quantity) IsZero() bool                  { return q.value.IsZero() }
func (q Quantity) IsPositive() bool              { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool              { return q.value.IsNegative() }
func (q Quantity) String() string                { return q.value.String() }
func (q Quantity) MarshalJSON() ([]byte, error)  { return q.value.MarshalJSON() }
func (q *Quantity) UnmarshalJSON(b []byte) error { return q.value.UnmarshalJSON(b) }
