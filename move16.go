package m68k

// MOVE16 transfers a 16-byte, 16-byte-aligned block between memory in one
// bus burst, the 68040's dedicated cache-line move. Grounded on the same
// coprocessor-ID numbering op_fpu.go/op_pmmu.go use (0xF6xx is the MOVE16
// line), gated on has040ExtCap since it is 68040-family only.
func init() {
	registerInstructionIf(move16, 0xf600, 0xffc0, 0, constantCycles(18), has040ExtCap)
}

func has040ExtCap(c capabilities) bool { return c.has040Ext }

// move16 dispatches on bits 5-3 of the opcode, the five real MOVE16 forms:
// 0 (Ax)+,(xxx).L; 1 (xxx).L,(Ay)+; 2 Ax,(xxx).L; 3 (xxx).L,Ay;
// 4 (Ax)+,(Ay)+. Forms 5-7 are unassigned and fault as an illegal opcode.
func move16(cpu *cpu) error {
	opcode := cpu.regs.IR
	form := (opcode >> 3) & 0x7
	reg := opcode & 0x7

	switch form {
	case 0:
		abs, err := cpu.popPc(Long)
		if err != nil {
			return err
		}
		src := cpu.regs.A[reg] &^ 0xf
		if err := move16Block(cpu, src, abs); err != nil {
			return err
		}
		cpu.regs.A[reg] += 16
		return nil
	case 1:
		abs, err := cpu.popPc(Long)
		if err != nil {
			return err
		}
		dst := cpu.regs.A[reg] &^ 0xf
		if err := move16Block(cpu, abs, dst); err != nil {
			return err
		}
		cpu.regs.A[reg] += 16
		return nil
	case 2:
		abs, err := cpu.popPc(Long)
		if err != nil {
			return err
		}
		src := cpu.regs.A[reg] &^ 0xf
		return move16Block(cpu, src, abs)
	case 3:
		abs, err := cpu.popPc(Long)
		if err != nil {
			return err
		}
		dst := cpu.regs.A[reg] &^ 0xf
		return move16Block(cpu, abs, dst)
	case 4:
		ext, err := cpu.popPc(Word)
		if err != nil {
			return err
		}
		ay := (ext >> 12) & 0x7
		src := cpu.regs.A[reg] &^ 0xf
		dst := cpu.regs.A[ay] &^ 0xf
		if err := move16Block(cpu, src, dst); err != nil {
			return err
		}
		cpu.regs.A[reg] += 16
		cpu.regs.A[ay] += 16
		return nil
	default:
		return cpu.exception(XIllegal)
	}
}

// move16Block copies 16 bytes from src to dst as four longword accesses,
// matching the aligned-burst transfer the 68040's data cache performs.
func move16Block(cpu *cpu, src, dst uint32) error {
	for i := uint32(0); i < 16; i += 4 {
		v, err := cpu.read(Long, src+i)
		if err != nil {
			return err
		}
		if err := cpu.write(Long, dst+i, v); err != nil {
			return err
		}
	}
	return nil
}
