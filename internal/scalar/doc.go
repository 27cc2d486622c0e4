// Package scalar defines the numeric types a hosted model can be
// parameterized over.
//
// Two kinds are supported:
//
//   - [Real]: a plain float64 value
//   - [Dual]: a forward-mode dual number carrying a value and one
//     derivative through every operation
//
// Generic code is written against the [Num] constraint so the same model
// logic evaluates plain values and derivatives without duplication. The
// supported set is declared once, in [Kind]; [KindOf] is the only place a
// scalar type is mapped to its kind, so adding a scalar means extending
// that single switch.
package scalar
