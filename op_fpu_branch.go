package m68k

import "github.com/benletchford/m68k/fpu"

// FBcc, FScc, FDBcc, and FTRAPcc occupy the rest of the 0xF2xx/0xF3xx
// coprocessor space fpuGeneralOp's 0xF200-0xF23F registration (op_fpu.go)
// deliberately leaves free: bits 8-6 of the first opcode word are a type
// field, 000 being the register/<ea>-arithmetic group and 001/010/011
// being FScc-or-FDBcc, FBcc.W, and FBcc.L respectively. FTRAPcc reuses the
// 68020 TRAPcc's three fixed encodings (no operand, word operand, long
// operand) at the top of the 0xF3xx half of the same coprocessor ID.
func init() {
	fsccEAMask := eaMaskDataRegister | eaMaskIndirect | eaMaskPostIncrement |
		eaMaskPreDecrement | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong

	registerInstructionIf(fdbcc, 0xf248, 0xfff8, 0, constantCycles(12), hasFPUCap)
	// fsccEAMask excludes eaMaskAddressRegister, so FScc never claims the
	// low-6-bits range 0x08-0x0f FDBcc just registered above it.
	registerInstructionIf(fscc, 0xf240, 0xffc0, fsccEAMask, constantCycles(8), hasFPUCap)
	registerInstructionIf(fbccWord, 0xf280, 0xffc0, 0, constantCycles(8), hasFPUCap)
	registerInstructionIf(fbccLong, 0xf2c0, 0xffc0, 0, constantCycles(10), hasFPUCap)
	registerInstructionIf(ftrapcc, 0xf3fa, 0xffff, 0, constantCycles(8), hasFPUCap)
	registerInstructionIf(ftrapcc, 0xf3fb, 0xffff, 0, constantCycles(8), hasFPUCap)
	registerInstructionIf(ftrapcc, 0xf3fc, 0xffff, 0, constantCycles(8), hasFPUCap)
}

// fpCondition evaluates one of the 16 base FPU condition predicates against
// the FPSR condition-code byte. Bit 4 of a real condition field selects the
// signaling (BSUN-on-NaN) variant of each predicate; this core does not
// model BSUN, so only the low 4 bits are consulted.
func fpCondition(cc uint8, fpsr uint32) bool {
	nan := fpsr&fpu.CCNaN != 0
	zero := fpsr&fpu.CCZero != 0
	neg := fpsr&fpu.CCNegative != 0
	ordered := !nan

	switch cc & 0xf {
	case 0x0: // F
		return false
	case 0x1: // EQ
		return ordered && zero
	case 0x2: // OGT
		return ordered && !zero && !neg
	case 0x3: // OGE
		return ordered && (zero || !neg)
	case 0x4: // OLT
		return ordered && !zero && neg
	case 0x5: // OLE
		return ordered && (zero || neg)
	case 0x6: // OGL
		return ordered && !zero
	case 0x7: // OR
		return ordered
	case 0x8: // UN
		return nan
	case 0x9: // UEQ
		return nan || zero
	case 0xa: // UGT
		return nan || (!zero && !neg)
	case 0xb: // UGE
		return nan || zero || !neg
	case 0xc: // ULT
		return nan || (!zero && neg)
	case 0xd: // ULE
		return nan || zero || neg
	case 0xe: // NE
		return nan || !zero
	default: // T
		return true
	}
}

// fbccWord and fbccLong implement FBcc with a 16- or 32-bit displacement.
// There is no extension condition word: cc comes directly from the low 6
// bits of the opcode itself. The displacement is measured from the address
// immediately following it, mirroring op_branch.go's Bcc convention.
func fbccWord(cpu *cpu) error {
	cc := uint8(cpu.regs.IR & 0x3f)
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	if fpCondition(cc, cpu.fpuState.FPSR) {
		cpu.regs.PC = uint32(int32(cpu.regs.PC) + int32(int16(ext)))
	}
	return nil
}

func fbccLong(cpu *cpu) error {
	cc := uint8(cpu.regs.IR & 0x3f)
	ext, err := cpu.popPc(Long)
	if err != nil {
		return err
	}
	if fpCondition(cc, cpu.fpuState.FPSR) {
		cpu.regs.PC = uint32(int32(cpu.regs.PC) + int32(ext))
	}
	return nil
}

// fscc sets every bit of a byte destination when cc is true, clears it
// otherwise. cc is carried in the low 6 bits of the extension word that
// follows the opcode.
func fscc(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	cc := uint8(ext & 0x3f)

	ea, err := cpu.ResolveSrcEA(Byte)
	if err != nil {
		return err
	}

	var v uint32
	if fpCondition(cc, cpu.fpuState.FPSR) {
		v = 0xff
	}
	return ea.write(v)
}

// fdbcc decrements Dn's low word and branches while cc is false, exactly
// like the integer DBcc loop this core has no standalone implementation of
// (FDBcc is the only decrement-and-branch instruction registered here).
func fdbcc(cpu *cpu) error {
	dn := int(cpu.regs.IR & 0x7)

	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	cc := uint8(ext & 0x3f)

	disp, err := cpu.popPc(Word)
	if err != nil {
		return err
	}

	if fpCondition(cc, cpu.fpuState.FPSR) {
		return nil
	}

	count := int16(cpu.regs.D[dn]) - 1
	cpu.regs.D[dn] = (cpu.regs.D[dn] &^ 0xffff) | int32(uint16(count))
	if count != -1 {
		cpu.regs.PC = uint32(int32(cpu.regs.PC) + int32(int16(disp)))
	}
	return nil
}

// ftrapcc raises vectorTRAPV when cc is true, consuming the word or long
// immediate operand the 0xF3FA/0xF3FB encodings carry (0xF3FC takes none)
// before testing the condition, since real hardware always fetches the
// full instruction before evaluating it.
func ftrapcc(cpu *cpu) error {
	faultPC := cpu.regs.PC - 2
	opcode := cpu.regs.IR

	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	cc := uint8(ext & 0x3f)

	switch opcode & 0x7 {
	case 0x2:
		if _, err := cpu.popPc(Word); err != nil {
			return err
		}
	case 0x3:
		if _, err := cpu.popPc(Long); err != nil {
			return err
		}
	}

	if fpCondition(cc, cpu.fpuState.FPSR) {
		return cpu.raiseException(vectorTRAPV, faultPC)
	}
	return nil
}
