package m68k

func init() {
	memAlterableMask := eaMaskIndirect | eaMaskPostIncrement | eaMaskPreDecrement |
		eaMaskDisplacement | eaMaskIndex | eaMaskAbsoluteShort | eaMaskAbsoluteLong

	registerInstructionIf(cas, 0x0ac0, 0xffc0, memAlterableMask, constantCycles(20), has020ExtCap)
	registerInstructionIf(cas, 0x0cc0, 0xffc0, memAlterableMask, constantCycles(20), has020ExtCap)
	registerInstructionIf(cas, 0x0ec0, 0xffc0, memAlterableMask, constantCycles(20), has020ExtCap)

	registerInstructionIf(cas2, 0x0afc, 0xffff, 0, constantCycles(40), has020ExtCap)
	registerInstructionIf(cas2, 0x0cfc, 0xffff, 0, constantCycles(40), has020ExtCap)
	registerInstructionIf(cas2, 0x0efc, 0xffff, 0, constantCycles(40), has020ExtCap)
}

// casSize recovers the operand size CAS/CAS2 encode in opcode bits 11-9:
// 0000 1010 for byte, 0000 1100 for word, 0000 1110 for long.
func casSize(opcode uint16) Size {
	switch opcode & 0x0e00 {
	case 0x0a00:
		return Byte
	case 0x0c00:
		return Word
	default:
		return Long
	}
}

// cas implements CAS Dc,Du,<ea>: compares the current memory value against
// Dc, setting flags as CMP.<size> <ea>,Dc would, then either writes Du to
// memory on a match or loads the memory value into Dc on a mismatch.
func cas(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	du := (ext >> 6) & 0x7
	dc := ext & 0x7

	size := casSize(cpu.regs.IR)
	ea, err := cpu.ResolveSrcEA(size)
	if err != nil {
		return err
	}
	mem, err := ea.read()
	if err != nil {
		return err
	}

	dcVal := uint32(cpu.regs.D[dc])
	_, flags := subWithFlags(mem, dcVal, size)
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | (flags & (srNegative | srZero | srOverflow | srCarry))

	if dcVal&size.mask() == mem&size.mask() {
		return ea.write(uint32(cpu.regs.D[du]) & size.mask())
	}
	cpu.regs.D[dc] = int32(writeSized(dcVal, mem, size))
	return nil
}

// cas2 implements CAS2 Dc1:Dc2,Du1:Du2,(Rn1):(Rn2). Each of the two
// extension words carries its own register triple; Rn values 8-15 select
// A0-A7 and 0-7 select a data register whose value is used as the address.
func cas2(cpu *cpu) error {
	ext1, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	ext2, err := cpu.popPc(Word)
	if err != nil {
		return err
	}

	rn1, du1, dc1 := decodeCas2Ext(uint16(ext1))
	rn2, du2, dc2 := decodeCas2Ext(uint16(ext2))

	addr1 := cas2RnAddress(cpu, rn1)
	addr2 := cas2RnAddress(cpu, rn2)

	size := casSize(cpu.regs.IR)
	mem1, err := cpu.read(size, addr1)
	if err != nil {
		return err
	}
	mem2, err := cpu.read(size, addr2)
	if err != nil {
		return err
	}

	dc1Val := uint32(cpu.regs.D[dc1])
	dc2Val := uint32(cpu.regs.D[dc2])

	_, flags := subWithFlags(mem1, dc1Val, size)
	match1 := dc1Val&size.mask() == mem1&size.mask()
	if match1 {
		_, flags = subWithFlags(mem2, dc2Val, size)
	}
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | (flags & (srNegative | srZero | srOverflow | srCarry))

	match2 := dc2Val&size.mask() == mem2&size.mask()
	if match1 && match2 {
		if err := cpu.write(size, addr1, uint32(cpu.regs.D[du1])&size.mask()); err != nil {
			return err
		}
		return cpu.write(size, addr2, uint32(cpu.regs.D[du2])&size.mask())
	}

	cpu.regs.D[dc1] = int32(writeSized(dc1Val, mem1, size))
	cpu.regs.D[dc2] = int32(writeSized(dc2Val, mem2, size))
	return nil
}

func decodeCas2Ext(ext uint16) (rn, du, dc uint16) {
	return (ext >> 12) & 0xf, (ext >> 6) & 0x7, ext & 0x7
}

func cas2RnAddress(cpu *cpu, rn uint16) uint32 {
	if rn >= 8 {
		return cpu.regs.A[rn-8]
	}
	return uint32(cpu.regs.D[rn])
}

func writeSized(old, value uint32, size Size) uint32 {
	switch size {
	case Byte:
		return (old &^ 0xff) | (value & 0xff)
	case Word:
		return (old &^ 0xffff) | (value & 0xffff)
	default:
		return value
	}
}
