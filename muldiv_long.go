package m68k

func init() {
	longMulDivMask := eaMaskDataRegister | eaMaskIndirect | eaMaskPostIncrement |
		eaMaskPreDecrement | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong | eaMaskPCDisplacement |
		eaMaskPCIndex | eaMaskImmediate

	registerInstructionIf(mulDivLong, 0x4c00, 0xffc0, longMulDivMask, constantCycles(40), has020ExtCap)
	registerInstructionIf(mulDivLong, 0x4c40, 0xffc0, longMulDivMask, constantCycles(40), has020ExtCap)
}

// mulDivLong implements the 68020+ 32x32 multiply and divide family sharing
// opcode words 0x4c00 (MULU.L/MULS.L) and 0x4c40 (DIVU.L/DIVS.L and their
// 64-bit dividend/remainder forms). The extension word that follows the
// opcode selects sign, 64-bit operation, and the register pair.
func mulDivLong(cpu *cpu) error {
	if (cpu.regs.IR>>6)&0x1 != 0 {
		return divLong(cpu)
	}
	return mulLong(cpu)
}

func mulLong(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	ext16 := uint16(ext)

	signed := ext16&0x0800 != 0
	wide := ext16&0x0400 != 0
	dl := (ext16 >> 12) & 0x7
	dh := ext16 & 0x7

	src, err := cpu.ResolveSrcEA(Long)
	if err != nil {
		return err
	}
	srcVal, err := src.read()
	if err != nil {
		return err
	}
	dst := uint32(cpu.regs.D[dl])

	var lo, hi uint32
	if signed {
		prod := int64(int32(dst)) * int64(int32(srcVal))
		lo = uint32(prod)
		hi = uint32(prod >> 32)
	} else {
		prod := uint64(dst) * uint64(srcVal)
		lo = uint32(prod)
		hi = uint32(prod >> 32)
	}

	cpu.regs.D[dl] = int32(lo)

	var overflow bool
	if wide {
		cpu.regs.D[dh] = int32(hi)
	} else if signed {
		signExt := uint32(0)
		if lo&0x80000000 != 0 {
			signExt = 0xffffffff
		}
		overflow = hi != signExt
	} else {
		overflow = hi != 0
	}

	var flags uint16
	if lo == 0 {
		flags |= srZero
	}
	if lo&0x80000000 != 0 {
		flags |= srNegative
	}
	if overflow {
		flags |= srOverflow
	}
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | flags
	return nil
}

func divLong(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	ext16 := uint16(ext)

	signed := ext16&0x0800 != 0
	use64 := ext16&0x0400 != 0
	dq := (ext16 >> 12) & 0x7
	dr := ext16 & 0x7

	src, err := cpu.ResolveSrcEA(Long)
	if err != nil {
		return err
	}
	divisorRaw, err := src.read()
	if err != nil {
		return err
	}
	if divisorRaw == 0 {
		return cpu.exception(XDivByZero)
	}

	var quot, rem uint32
	var overflow bool
	if signed {
		divisor := int64(int32(divisorRaw))
		var dividend int64
		if use64 {
			dividend = (int64(cpu.regs.D[dr]) << 32) | int64(uint32(cpu.regs.D[dq]))
		} else {
			dividend = int64(cpu.regs.D[dq])
		}
		q := dividend / divisor
		r := dividend % divisor
		overflow = q < -0x80000000 || q > 0x7fffffff
		quot, rem = uint32(int32(q)), uint32(int32(r))
	} else {
		divisor := uint64(divisorRaw)
		var dividend uint64
		if use64 {
			dividend = (uint64(uint32(cpu.regs.D[dr])) << 32) | uint64(uint32(cpu.regs.D[dq]))
		} else {
			dividend = uint64(uint32(cpu.regs.D[dq]))
		}
		q := dividend / divisor
		r := dividend % divisor
		overflow = q > 0xffffffff
		quot, rem = uint32(q), uint32(r)
	}

	if overflow {
		cpu.regs.SR = (cpu.regs.SR &^ srCarry) | srOverflow
		return nil
	}

	cpu.regs.D[dq] = int32(quot)
	if use64 || dr != dq {
		cpu.regs.D[dr] = int32(rem)
	}

	var flags uint16
	if quot == 0 {
		flags |= srZero
	}
	if quot&0x80000000 != 0 {
		flags |= srNegative
	}
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | flags
	return nil
}
