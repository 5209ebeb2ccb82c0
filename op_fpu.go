package m68k

import (
	"math"

	"github.com/benletchford/m68k/fpu"
)

func init() {
	fpuEAMask := eaMaskDataRegister | eaMaskIndirect | eaMaskPostIncrement |
		eaMaskPreDecrement | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong | eaMaskImmediate |
		eaMaskPCDisplacement | eaMaskPCIndex
	// mask fixes bits 8-6 (the coprocessor type field) to 000, the
	// register/<ea>-arithmetic and FMOVEM group; FBcc/FScc/FDBcc/FTRAPcc
	// live in the rest of 0xF2xx/0xF3xx and are registered separately in
	// op_fpu_branch.go. Leaving bits 8-6 unconstrained here used to claim
	// that space too, wherever the low 6 bits happened to pass fpuEAMask.
	registerInstructionIf(fpuGeneralOp, 0xf200, 0xffc0, fpuEAMask, constantCycles(4), hasFPUCap)
}

func hasFPUCap(c capabilities) bool { return c.hasFPU }

// fpuGeneralOp implements the 0xF2xx coprocessor instruction group: the
// extension word immediately following the opcode selects between FP
// register-to-register arithmetic, <ea>-to-FPn arithmetic, and FPn-to-<ea>
// moves. The packed-decimal and extended-precision memory formats are not
// decoded here; they raise vectorFPUnimplemented, matching how a 68881-less
// coprocessor interface reports an instruction it cannot execute. FScc/FBcc
// are handled in op_fpu_branch.go.
func fpuGeneralOp(cpu *cpu) error {
	faultPC := cpu.regs.PC - 2
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	w2 := uint16(ext)
	subop := (w2 >> 13) & 0x7

	switch subop {
	case 0x0:
		return fpuRegisterOp(cpu, w2, faultPC)
	case 0x2:
		return fpuMemoryToRegister(cpu, w2, faultPC)
	case 0x3:
		return fpuRegisterToMemory(cpu, w2, faultPC)
	case 0x6, 0x7:
		return fpuMovem(cpu, w2)
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
}

// fpuMovem implements FMOVEM, transferring a register-list of FP0-FP7
// to or from memory as IEEE doubles. The extension word's subop bit (13)
// selects a static list (bits 7-0 of the extension word, bit 7 = FP0) or a
// dynamic one (bits 6-4 name a data register whose low byte is the list,
// per the 68040's register-specified-count form); bit 11 selects direction.
// Address resolution and predecrement/postincrement ordering are adapted
// from movemReadAddress/movemRegisterOrder in op_movem.go. Real hardware
// transfers each FP register in its 96-bit extended format; this core
// stores FP0-FP7 as float64 and moves 8-byte doubles instead (the same
// simplification fpuMemoryToRegister/fpuRegisterToMemory make for FMOVE).
func fpuMovem(cpu *cpu, w2 uint16) error {
	toRegisters := w2&0x0800 != 0
	dynamic := w2&0x2000 != 0

	var mask uint8
	if dynamic {
		regNum := (w2 >> 4) & 0x7
		mask = uint8(cpu.regs.D[regNum] & 0xff)
	} else {
		mask = uint8(w2 & 0xff)
	}

	opcode := cpu.regs.IR
	mode := (opcode >> 3) & 0x7
	reg := opcode & 0x7
	addr, err := movemReadAddress(cpu, mode, reg)
	if err != nil {
		return err
	}

	order := fpRegisterList(mask)
	if mode == 4 {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	s := &cpu.fpuState
	for _, r := range order {
		if mode == 4 {
			addr -= 8
		}
		if toRegisters {
			v, err := cpu.readDouble(addr)
			if err != nil {
				return err
			}
			s.FP[r] = v
		} else {
			if err := cpu.writeDouble(addr, s.FP[r]); err != nil {
				return err
			}
		}
		if mode == 3 {
			addr += 8
		}
	}

	if mode == 3 || mode == 4 {
		cpu.regs.A[reg] = addr
	}
	return nil
}

// fpRegisterList expands a static FMOVEM list byte into FP register
// indices, bit 7 of mask naming FP0 through bit 0 naming FP7.
func fpRegisterList(mask uint8) []int {
	var order []int
	for i := 0; i < 8; i++ {
		if mask&(1<<(7-i)) != 0 {
			order = append(order, i)
		}
	}
	return order
}

// fpuResolveMemoryAddress resolves the <ea> at the bottom 6 bits of the
// current opcode for a sizeBytes-wide FPU memory operand (the double and
// packed-decimal formats MOVE16-width Size constants cannot express).
// Postincrement/predecrement step by sizeBytes directly rather than
// delegating to ea.go's Size-based modifier, which only knows Byte/Word/
// Long widths; every other mode reuses op_movem.go's movemReadAddress,
// which already resolves an address without performing any increment.
func fpuResolveMemoryAddress(cpu *cpu, sizeBytes uint32) (uint32, error) {
	opcode := cpu.regs.IR
	mode := (opcode >> 3) & 0x7
	reg := opcode & 0x7

	switch mode {
	case 3: // (An)+
		addr := cpu.regs.A[reg]
		cpu.regs.A[reg] += sizeBytes
		return addr, nil
	case 4: // -(An)
		cpu.regs.A[reg] -= sizeBytes
		return cpu.regs.A[reg], nil
	default:
		return movemReadAddress(cpu, mode, reg)
	}
}

// readDouble/writeDouble move an IEEE double-precision value through two
// sequential big-endian longword bus accesses.
func (cpu *cpu) readDouble(addr uint32) (float64, error) {
	hi, err := cpu.read(Long, addr)
	if err != nil {
		return 0, err
	}
	lo, err := cpu.read(Long, addr+4)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(hi)<<32 | uint64(lo)), nil
}

func (cpu *cpu) writeDouble(addr uint32, v float64) error {
	bits := math.Float64bits(v)
	if err := cpu.write(Long, addr, uint32(bits>>32)); err != nil {
		return err
	}
	return cpu.write(Long, addr+4, uint32(bits))
}

// fpuRegisterOp handles FPm,FPn register-to-register arithmetic (extension
// word bits 15-13 = 000), grounded on the opmode table a 68040-class FPU
// microcode ROM implements.
func fpuRegisterOp(cpu *cpu, w2 uint16, faultPC uint32) error {
	src := int((w2 >> 10) & 0x7)
	dst := int((w2 >> 7) & 0x7)
	opmode := w2 & 0x7f
	s := &cpu.fpuState

	switch opmode {
	case 0x17:
		s.FMOVECR(dst, uint8(src))
	case 0x00:
		s.Move(dst, s.FP[src])
	case 0x01:
		s.FP[dst] = s.FP[src]
		s.Round(dst, false)
	case 0x03:
		s.FP[dst] = s.FP[src]
		s.Round(dst, true)
	case 0x04, 0x44, 0x45:
		return fpuMonadic(cpu, dst, src, faultPC, (*fpu.State).Sqrt)
	case 0x18, 0x58, 0x5c:
		s.FP[dst] = s.FP[src]
		s.Abs(dst)
	case 0x1a, 0x5a, 0x5e:
		s.FP[dst] = s.FP[src]
		s.Neg(dst)
	case 0x20, 0x60, 0x64:
		s.Div(dst, s.FP[src])
	case 0x22, 0x62, 0x66:
		s.Add(dst, s.FP[src])
	case 0x23, 0x63, 0x67:
		s.Mul(dst, s.FP[src])
	case 0x28, 0x68, 0x6c:
		s.Sub(dst, s.FP[src])
	case 0x38:
		s.Compare(dst, s.FP[src])
	case 0x3a:
		s.Test(s.FP[src])
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
	return nil
}

// fpuNormalizeOpmode strips the Musashi-style rounding-precision modifier
// bits (0x40/0x44) a real 68040 FPU microcode ROM also accepts on most
// arithmetic opcodes, so the opmode switch only needs the base operation.
func fpuNormalizeOpmode(opmode uint16) uint16 {
	if opmode&0x44 == 0x44 {
		return opmode &^ 0x44
	}
	if opmode&0x40 != 0 {
		return opmode &^ 0x40
	}
	return opmode
}

func fpuMonadic(cpu *cpu, dst, src int, faultPC uint32, fn func(*fpu.State, int) (float64, error)) error {
	s := &cpu.fpuState
	s.FP[dst] = s.FP[src]
	if _, err := fn(s, dst); err != nil {
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
	return nil
}

// fpuMemoryToRegister handles <ea>,FPn with the source operand read from
// memory or an integer data register (extension word bits 15-13 = 010).
// Long-integer, single-precision, and double-precision memory formats are
// decoded; extended/packed-decimal sources raise vectorFPUnimplemented
// rather than guess at an 80-bit/BCD byte layout (documented simplification).
func fpuMemoryToRegister(cpu *cpu, w2 uint16, faultPC uint32) error {
	srcFmt := (w2 >> 10) & 0x7
	dst := int((w2 >> 7) & 0x7)
	opmode := fpuNormalizeOpmode(w2 & 0x7f)

	if srcFmt == 7 {
		cpu.fpuState.FMOVECR(dst, uint8(opmode))
		return nil
	}

	var value float64
	switch srcFmt {
	case 0:
		ea, err := cpu.ResolveSrcEA(Long)
		if err != nil {
			return err
		}
		raw, err := ea.read()
		if err != nil {
			return err
		}
		value = float64(int32(raw))
	case 1:
		ea, err := cpu.ResolveSrcEA(Long)
		if err != nil {
			return err
		}
		raw, err := ea.read()
		if err != nil {
			return err
		}
		value = float64(math.Float32frombits(raw))
	case 5:
		addr, err := fpuResolveMemoryAddress(cpu, 8)
		if err != nil {
			return err
		}
		v, err := cpu.readDouble(addr)
		if err != nil {
			return err
		}
		value = v
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}

	s := &cpu.fpuState
	switch opmode {
	case 0x00:
		s.Move(dst, value)
	case 0x20:
		s.Div(dst, value)
	case 0x22:
		s.Add(dst, value)
	case 0x23:
		s.Mul(dst, value)
	case 0x28:
		s.Sub(dst, value)
	case 0x38:
		s.Compare(dst, value)
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
	return nil
}

// fpuRegisterToMemory handles FPn,<ea> (extension word bits 15-13 = 011),
// writing FP[src] out in the destination format. As with
// fpuMemoryToRegister, long-integer, single-, and double-precision formats
// are supported; extended/packed-decimal are not.
func fpuRegisterToMemory(cpu *cpu, w2 uint16, faultPC uint32) error {
	dstFmt := (w2 >> 10) & 0x7
	src := int((w2 >> 7) & 0x7)
	value := cpu.fpuState.FP[src]

	switch dstFmt {
	case 0:
		ea, err := cpu.ResolveSrcEA(Long)
		if err != nil {
			return err
		}
		return ea.write(uint32(int32(value)))
	case 1:
		ea, err := cpu.ResolveSrcEA(Long)
		if err != nil {
			return err
		}
		return ea.write(math.Float32bits(float32(value)))
	case 5:
		addr, err := fpuResolveMemoryAddress(cpu, 8)
		if err != nil {
			return err
		}
		return cpu.writeDouble(addr, value)
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
}
