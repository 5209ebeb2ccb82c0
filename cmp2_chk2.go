package m68k

func init() {
	boundsMask := eaMaskIndirect | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong | eaMaskPCDisplacement | eaMaskPCIndex

	registerInstructionIf(cmp2chk2, 0x00c0, 0xffc0, boundsMask, constantCycles(12), has020ExtCap)
	registerInstructionIf(cmp2chk2, 0x02c0, 0xffc0, boundsMask, constantCycles(12), has020ExtCap)
	registerInstructionIf(cmp2chk2, 0x04c0, 0xffc0, boundsMask, constantCycles(12), has020ExtCap)
}

// cmp2chk2 implements CMP2/CHK2 <ea>,Rn: <ea> points at a pair of
// consecutive sized bounds; the extension word's bit 11 selects whether an
// out-of-range register value only sets flags (CMP2) or also traps through
// the CHK vector (CHK2).
func cmp2chk2(cpu *cpu) error {
	size := operandSizeFromOpcode(cpu.regs.IR >> 3)
	faultPC := cpu.regs.PC

	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	isChk2 := ext&0x0800 != 0
	rn := (ext >> 12) & 0xf

	ea, err := cpu.ResolveSrcEA(size)
	if err != nil {
		return err
	}
	addr := ea.computedAddress()

	lower, err := cpu.read(size, addr)
	if err != nil {
		return err
	}
	upper, err := cpu.read(size, addr+uint32(size))
	if err != nil {
		return err
	}

	var raw uint32
	if rn >= 8 {
		raw = cpu.regs.A[rn-8]
	} else {
		raw = uint32(cpu.regs.D[rn])
	}

	var below, above bool
	switch size {
	case Byte:
		v, lo, hi := uint8(raw), uint8(lower), uint8(upper)
		below, above = v < lo, v > hi
	case Word:
		v, lo, hi := int32(int16(raw)), int32(int16(lower)), int32(int16(upper))
		below, above = v < lo, v > hi
	default:
		v, lo, hi := int32(raw), int32(lower), int32(upper)
		below, above = v < lo, v > hi
	}
	outOfRange := below || above

	var flags uint16
	if outOfRange {
		flags |= srCarry
	} else {
		flags |= srZero
	}
	if below {
		flags |= srNegative
	}
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | flags

	if isChk2 && outOfRange {
		return cpu.raiseException(vectorCHK, faultPC)
	}
	return nil
}
