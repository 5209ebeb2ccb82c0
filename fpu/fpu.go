// Package fpu implements the floating-point register file and arithmetic
// for the M68000-family on-chip/coprocessor FPU (68881/2-equivalent,
// attached on 68020/030/040 per the capability table in the core package).
package fpu

import "math"

// FPCR rounding-mode field values (bits 4-5).
const (
	RoundNearest  = 0
	RoundZero     = 1
	RoundMinusInf = 2
	RoundPlusInf  = 3
)

// FPSR condition-code byte bits, mirroring the core's CCR bit layout.
const (
	CCNaN     uint32 = 1 << 24
	CCInfinity uint32 = 1 << 25
	CCZero    uint32 = 1 << 26
	CCNegative uint32 = 1 << 27
)

// Extended is the sign/exponent/mantissa decomposition of an IEEE 754
// extended-precision (80-bit) value, produced by ToExtended. No instruction
// in this core reads or writes the extended or packed-decimal memory
// formats; ordinary arithmetic works directly on State.FP's float64s.
type Extended struct {
	Negative bool
	Exponent int32 // unbiased, 15-bit field width
	Mantissa uint64
}

// ToExtended converts a float64 into its 80-bit decomposition.
func ToExtended(v float64) Extended {
	if v == 0 {
		return Extended{Negative: math.Signbit(v)}
	}
	bits := math.Float64bits(v)
	neg := bits>>63 != 0
	biasedExp := int32((bits >> 52) & 0x7ff)
	mant := bits & 0xfffffffffffff
	exp := biasedExp - 1023
	return Extended{Negative: neg, Exponent: exp, Mantissa: (mant << 11) | (1 << 63)}
}

// Float64 converts back to the nearest representable float64, losing
// precision below the 52 mantissa bits a double carries.
func (e Extended) Float64() float64 {
	if e.Mantissa == 0 {
		if e.Negative {
			return math.Copysign(0, -1)
		}
		return 0
	}
	biasedExp := uint64(e.Exponent+1023) & 0x7ff
	mant := (e.Mantissa << 1) >> 12
	bits := biasedExp<<52 | mant
	if e.Negative {
		bits |= 1 << 63
	}
	return math.Float64frombits(bits)
}

// State holds the FP0-FP7 data registers and the three control registers.
type State struct {
	FP    [8]float64
	FPCR  uint32
	FPSR  uint32
	FPIAR uint32

	// TrapTranscendentals, when set, makes Sin/Cos/Log/etc. return
	// ErrUnimplemented instead of a math-computed approximation, for
	// callers that need the unimplemented-FP vector to fire exactly as
	// real silicon without an FPU microcode ROM would.
	TrapTranscendentals bool
}

// New returns a zeroed FPU state with FPCR/FPSR/FPIAR clear, matching reset.
func New() State {
	return State{}
}

// ErrUnimplemented is returned by transcendental operations when
// TrapTranscendentals is set, signalling the caller to raise the
// unimplemented-floating-point-instruction exception instead of using the
// math-package approximation.
type ErrUnimplemented struct {
	Op string
}

func (e ErrUnimplemented) Error() string {
	return "fpu: " + e.Op + " requires hardware microcode, not implemented"
}

func (s *State) updateCC(v float64) {
	s.FPSR &^= CCNaN | CCInfinity | CCZero | CCNegative
	if math.IsNaN(v) {
		s.FPSR |= CCNaN
	}
	if math.IsInf(v, 0) {
		s.FPSR |= CCInfinity
	}
	if v == 0 {
		s.FPSR |= CCZero
	}
	if math.Signbit(v) {
		s.FPSR |= CCNegative
	}
}

// Move sets FP[reg] to v and updates the FPSR condition codes, as FMOVE
// between the FPU register file and memory/an integer data register does.
func (s *State) Move(reg int, v float64) {
	s.FP[reg] = v
	s.updateCC(v)
}

// Add, Sub, Mul, Div perform the four basic dyadic operations, source op
// dest -> dest, and update the condition codes from the result.
func (s *State) Add(dest int, src float64) float64 { return s.dyadic(dest, func(a, b float64) float64 { return a + b }, src) }
func (s *State) Sub(dest int, src float64) float64 { return s.dyadic(dest, func(a, b float64) float64 { return a - b }, src) }
func (s *State) Mul(dest int, src float64) float64 { return s.dyadic(dest, func(a, b float64) float64 { return a * b }, src) }
func (s *State) Div(dest int, src float64) float64 { return s.dyadic(dest, func(a, b float64) float64 { return a / b }, src) }

func (s *State) dyadic(dest int, op func(a, b float64) float64, src float64) float64 {
	result := op(s.FP[dest], src)
	s.FP[dest] = result
	s.updateCC(result)
	return result
}

// Sqrt, Sin, Cos, Tan, Log2, LogN, Atan are the monadic transcendentals
// FSQRT/FSIN/FCOS/FTAN/FLOG2/FLOGN/FATAN reduce to. They are computed with
// the math package, an acceptable deviation from the hardware's microcode
// ROM unless TrapTranscendentals is set.
func (s *State) Sqrt(dest int) (float64, error) { return s.monadic(dest, "FSQRT", math.Sqrt) }
func (s *State) Sin(dest int) (float64, error)  { return s.monadic(dest, "FSIN", math.Sin) }
func (s *State) Cos(dest int) (float64, error)  { return s.monadic(dest, "FCOS", math.Cos) }
func (s *State) Tan(dest int) (float64, error)  { return s.monadic(dest, "FTAN", math.Tan) }
func (s *State) Log2(dest int) (float64, error) { return s.monadic(dest, "FLOG2", math.Log2) }
func (s *State) LogN(dest int) (float64, error) { return s.monadic(dest, "FLOGN", math.Log) }
func (s *State) Atan(dest int) (float64, error) { return s.monadic(dest, "FATAN", math.Atan) }

func (s *State) monadic(dest int, op string, fn func(float64) float64) (float64, error) {
	if s.TrapTranscendentals {
		return 0, ErrUnimplemented{Op: op}
	}
	result := fn(s.FP[dest])
	s.FP[dest] = result
	s.updateCC(result)
	return result, nil
}

// Compare computes dest-src for condition-code purposes only, without
// writing the difference back to FP[dest], as FCMP does.
func (s *State) Compare(dest int, src float64) { s.updateCC(s.FP[dest] - src) }

// Test sets the condition codes from v without touching any register, as
// FTST does.
func (s *State) Test(v float64) { s.updateCC(v) }

// Abs and Neg are the sign-only monadic operations FABS/FNEG reduce to.
// Unlike Sqrt/Sin/Cos/..., they never need microcode and so never consult
// TrapTranscendentals.
func (s *State) Abs(dest int) float64 { return s.signOp(dest, math.Abs) }
func (s *State) Neg(dest int) float64 { return s.signOp(dest, func(v float64) float64 { return -v }) }

// Round performs FINT/FINTRZ, rounding FP[dest] to an integral value.
// truncate selects FINTRZ (always round toward zero); otherwise the
// rounding mode comes from FPCR bits 4-5.
func (s *State) Round(dest int, truncate bool) float64 {
	v := s.FP[dest]
	var result float64
	switch {
	case truncate:
		result = math.Trunc(v)
	case (s.FPCR>>4)&0x3 == RoundZero:
		result = math.Trunc(v)
	case (s.FPCR>>4)&0x3 == RoundMinusInf:
		result = math.Floor(v)
	case (s.FPCR>>4)&0x3 == RoundPlusInf:
		result = math.Ceil(v)
	default:
		result = math.Round(v)
	}
	s.FP[dest] = result
	s.updateCC(result)
	return result
}

func (s *State) signOp(dest int, fn func(float64) float64) float64 {
	result := fn(s.FP[dest])
	s.FP[dest] = result
	s.updateCC(result)
	return result
}

// fmovecrTable holds the 64-entry FMOVECR ROM (pi, e, ln2, and friends);
// unassigned entries return 0, matching an unprogrammed ROM slot.
var fmovecrTable = map[uint8]float64{
	0x00: math.Pi,
	0x0B: math.Log10E,
	0x0C: math.Log2E,
	0x0D: math.E,
	0x0E: math.Ln2,
	0x0F: math.Ln10,
	0x32: 1,
	0x3B: 100,
	0x3C: 1e4,
	0x3D: 1e8,
	0x3E: 1e16,
	0x3F: 1e32,
}

// FMOVECR loads one of the FPU ROM constants into FP[dest].
func (s *State) FMOVECR(dest int, romOffset uint8) float64 {
	v := fmovecrTable[romOffset]
	s.Move(dest, v)
	return v
}
