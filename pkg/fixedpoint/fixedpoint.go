package fixedpoint

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow intermediate product exceeds 256 bits
	ErrOverflow = errors.New("fixedpoint: overflow")
	// ErrDivisionByZero division by zero
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	// ErrNegative negative values cannot be represented
	ErrNegative = errors.New("fixedpoint: negative value")
)

var (
	wad     = uint256.NewInt(1e18)
	halfWad = uint256.NewInt(5e17)
	ray     = new(uint256.Int).Mul(wad, uint256.NewInt(1e9))
	halfRay = new(uint256.Int).Rsh(ray, 1)

	// ratio between ray and wad
	wadRayRatio     = uint256.NewInt(1e9)
	halfWadRayRatio = uint256.NewInt(5e8)

	percentFactor = uint256.NewInt(10000)
	halfPercent   = uint256.NewInt(5000)

	maxValue = func() *uint256.Int {
		var m uint256.Int
		return m.Not(&m)
	}()
)

// Big is an unsigned 256-bit fixed point value. The scale is carried by
// convention: wad values hold 18 decimals, ray values hold 27.
type Big struct {
	i uint256.Int
}

// New builds a Big from a raw uint64.
func New(v uint64) Big {
	var b Big
	b.i.SetUint64(v)
	return b
}

// FromString parses a base-10 unsigned integer string.
func FromString(s string) (Big, error) {
	var b Big
	if err := b.i.SetFromDecimal(s); err != nil {
		return Big{}, fmt.Errorf("fixedpoint: parse %q: %w", s, err)
	}
	return b, nil
}

// MustFromString parses s and panics on failure. For constants only.
func MustFromString(s string) Big {
	b, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FromDecimal scales d up by the given number of decimals and truncates any
// remaining fraction. Negative inputs are rejected.
func FromDecimal(d decimal.Decimal, decimals int32) (Big, error) {
	if d.IsNegative() {
		return Big{}, ErrNegative
	}
	return FromString(d.Shift(decimals).Truncate(0).String())
}

// Wad is the 1e18 multiplicative identity of the wad domain.
func Wad() Big {
	var b Big
	b.i.Set(wad)
	return b
}

// Ray is the 1e27 multiplicative identity of the ray domain.
func Ray() Big {
	var b Big
	b.i.Set(ray)
	return b
}

// Max is the largest representable value, used as the infinite health factor.
func Max() Big {
	var b Big
	b.i.Set(maxValue)
	return b
}

// Decimal scales the raw value down by the given number of decimals.
func (a Big) Decimal(decimals int32) decimal.Decimal {
	d, _ := decimal.NewFromString(a.i.Dec())
	return d.Shift(-decimals)
}

func (a Big) Add(b Big) (Big, error) {
	var z Big
	if _, over := z.i.AddOverflow(&a.i, &b.i); over {
		return Big{}, ErrOverflow
	}
	return z, nil
}

func (a Big) Sub(b Big) (Big, error) {
	var z Big
	if _, under := z.i.SubOverflow(&a.i, &b.i); under {
		return Big{}, ErrOverflow
	}
	return z, nil
}

// WadMul multiplies two wad values, rounding half up.
func (a Big) WadMul(b Big) (Big, error) {
	return mulRound(a, b, wad, halfWad)
}

// WadDiv divides two wad values, rounding half up.
func (a Big) WadDiv(b Big) (Big, error) {
	return divRound(a, b, wad)
}

// RayMul multiplies two ray values, rounding half up.
func (a Big) RayMul(b Big) (Big, error) {
	return mulRound(a, b, ray, halfRay)
}

// RayDiv divides two ray values, rounding half up.
func (a Big) RayDiv(b Big) (Big, error) {
	return divRound(a, b, ray)
}

// WadToRay lifts a wad value into the ray domain.
func (a Big) WadToRay() (Big, error) {
	var z Big
	if _, over := z.i.MulOverflow(&a.i, wadRayRatio); over {
		return Big{}, ErrOverflow
	}
	return z, nil
}

// RayToWad drops a ray value into the wad domain, rounding half up.
func (a Big) RayToWad() (Big, error) {
	var z Big
	if _, over := z.i.AddOverflow(&a.i, halfWadRayRatio); over {
		return Big{}, ErrOverflow
	}
	z.i.Div(&z.i, wadRayRatio)
	return z, nil
}

// PercentMul multiplies by a basis-point fraction, rounding half up.
func (a Big) PercentMul(bps uint64) (Big, error) {
	return mulRound(a, New(bps), percentFactor, halfPercent)
}

func (a Big) MulUint64(v uint64) (Big, error) {
	var z Big
	if _, over := z.i.MulOverflow(&a.i, uint256.NewInt(v)); over {
		return Big{}, ErrOverflow
	}
	return z, nil
}

func (a Big) DivUint64(v uint64) (Big, error) {
	if v == 0 {
		return Big{}, ErrDivisionByZero
	}
	var z Big
	z.i.Div(&a.i, uint256.NewInt(v))
	return z, nil
}

// Uint64 returns the low 64 bits of the raw value.
func (a Big) Uint64() uint64 {
	return a.i.Uint64()
}

func (a Big) Cmp(b Big) int {
	return a.i.Cmp(&b.i)
}

func (a Big) LessThan(b Big) bool {
	return a.i.Lt(&b.i)
}

func (a Big) GreaterThan(b Big) bool {
	return a.i.Gt(&b.i)
}

func (a Big) Eq(b Big) bool {
	return a.i.Eq(&b.i)
}

func (a Big) IsZero() bool {
	return a.i.IsZero()
}

// String renders the raw unscaled integer in base 10.
func (a Big) String() string {
	return a.i.Dec()
}

func (a Big) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.Dec() + `"`), nil
}

func (a *Big) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		a.i.Clear()
		return nil
	}
	return a.i.SetFromDecimal(s)
}

// Value implements driver.Valuer; values persist as base-10 strings.
func (a Big) Value() (driver.Value, error) {
	return a.i.Dec(), nil
}

// Scan implements sql.Scanner.
func (a *Big) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		a.i.Clear()
		return nil
	case string:
		if v == "" {
			a.i.Clear()
			return nil
		}
		return a.i.SetFromDecimal(v)
	case []byte:
		if len(v) == 0 {
			a.i.Clear()
			return nil
		}
		return a.i.SetFromDecimal(string(v))
	case int64:
		if v < 0 {
			return ErrNegative
		}
		a.i.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("fixedpoint: cannot scan %T", value)
	}
}

// (a*b + unit/2) / unit
func mulRound(a, b Big, unit, half *uint256.Int) (Big, error) {
	var z Big
	if _, over := z.i.MulOverflow(&a.i, &b.i); over {
		return Big{}, ErrOverflow
	}
	if _, over := z.i.AddOverflow(&z.i, half); over {
		return Big{}, ErrOverflow
	}
	z.i.Div(&z.i, unit)
	return z, nil
}

// (a*unit + b/2) / b
func divRound(a, b Big, unit *uint256.Int) (Big, error) {
	if b.i.IsZero() {
		return Big{}, ErrDivisionByZero
	}
	var z Big
	if _, over := z.i.MulOverflow(&a.i, unit); over {
		return Big{}, ErrOverflow
	}
	var half uint256.Int
	half.Rsh(&b.i, 1)
	if _, over := z.i.AddOverflow(&z.i, &half); over {
		return Big{}, ErrOverflow
	}
	z.i.Div(&z.i, &b.i)
	return z, nil
}
