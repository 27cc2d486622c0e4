package scalar

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedKind indicates a scalar type outside the declared set.
var ErrUnsupportedKind = errors.New("scalar: unsupported scalar type")

// Num is the constraint all scalar types satisfy. It is self-referential
// so arithmetic stays fully typed: a Num[Real] is a Real, never an
// interface value.
type Num[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Scale(k float64) T
	Float() float64
	FromFloat(v float64) T
	Sin() T
	Cos() T
}

// Kind names one supported scalar type.
type Kind int

const (
	KindInvalid Kind = iota
	KindReal
	KindDual
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindDual:
		return "dual"
	default:
		return "invalid"
	}
}

// KindOf maps a scalar type parameter to its Kind. This switch is the
// central declaration of the supported scalar set.
func KindOf[T Num[T]]() (Kind, error) {
	var z T
	switch any(z).(type) {
	case Real:
		return KindReal, nil
	case Dual:
		return KindDual, nil
	default:
		return KindInvalid, fmt.Errorf("%w: %T", ErrUnsupportedKind, z)
	}
}

// From constructs a scalar of type T from a plain value.
func From[T Num[T]](v float64) T {
	var z T
	return z.FromFloat(v)
}

// Zeros allocates a zero-valued scalar slice of length n.
func Zeros[T Num[T]](n int) []T {
	return make([]T, n)
}

// Floats truncates a scalar slice to its plain values.
func Floats[T Num[T]](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Float()
	}
	return out
}

// Real is the plain float64 scalar.
type Real float64

func (r Real) Add(o Real) Real         { return r + o }
func (r Real) Sub(o Real) Real         { return r - o }
func (r Real) Mul(o Real) Real         { return r * o }
func (r Real) Scale(k float64) Real    { return r * Real(k) }
func (r Real) Float() float64          { return float64(r) }
func (r Real) FromFloat(v float64) Real { return Real(v) }
func (r Real) Sin() Real               { return Real(math.Sin(float64(r))) }
func (r Real) Cos() Real               { return Real(math.Cos(float64(r))) }

// Dual is a forward-mode dual number: V is the value, D the derivative
// with respect to a single seed variable. Arithmetic applies the chain
// rule, so any expression over Duals yields both the value and its
// derivative in one pass.
type Dual struct {
	V float64
	D float64
}

// Seed returns a Dual with derivative 1, marking v as the variable of
// differentiation.
func Seed(v float64) Dual {
	return Dual{V: v, D: 1}
}

func (d Dual) Add(o Dual) Dual { return Dual{V: d.V + o.V, D: d.D + o.D} }
func (d Dual) Sub(o Dual) Dual { return Dual{V: d.V - o.V, D: d.D - o.D} }
func (d Dual) Mul(o Dual) Dual {
	return Dual{V: d.V * o.V, D: d.D*o.V + d.V*o.D}
}
func (d Dual) Scale(k float64) Dual { return Dual{V: d.V * k, D: d.D * k} }

// Float truncates to the value part. Dual→Real conversion goes through
// here, dropping the derivative.
func (d Dual) Float() float64 { return d.V }

func (d Dual) FromFloat(v float64) Dual { return Dual{V: v} }

func (d Dual) Sin() Dual {
	return Dual{V: math.Sin(d.V), D: d.D * math.Cos(d.V)}
}

func (d Dual) Cos() Dual {
	return Dual{V: math.Cos(d.V), D: -d.D * math.Sin(d.V)}
}
