package m68k

import "github.com/benletchford/m68k/mmu"

func init() {
	pmmuEAMask := eaMaskIndirect | eaMaskPostIncrement | eaMaskPreDecrement |
		eaMaskDisplacement | eaMaskIndex | eaMaskAbsoluteShort | eaMaskAbsoluteLong |
		eaMaskDataRegister
	registerInstructionIf(pmmuOp, 0xf000, 0xfe00, pmmuEAMask, constantCycles(4), hasPMMUCap)
}

func hasPMMUCap(c capabilities) bool { return c.hasPMMU }

// pmmuRegister names the PMMU control register a PMOVE extension word
// selects, per the 68030's COP0 register-select field (bits 12-10).
type pmmuRegister int

const (
	pmmuRegTC pmmuRegister = iota
	pmmuRegUnknown1
	pmmuRegSRP
	pmmuRegCRP
)

// pmmuOp implements every PMMU coprocessor instruction this core decodes:
// PMOVE to/from TC/SRP/CRP, PFLUSH/PFLUSHA ATC invalidation, and PTEST's
// translation probe. All of them share the 0xF000-0xF1FF opcode range,
// dispatched by the extension word's top 3 bits the way fpuGeneralOp
// dispatches FPU subops from its own extension word; the exact bit
// positions below are this core's own modeled encoding (no single 68851/
// 68030/68040 ATC-control layout covers all three uniformly), documented
// in DESIGN.md rather than traced to one datasheet table.
func pmmuOp(cpu *cpu) error {
	faultPC := cpu.regs.PC - 2
	if cpu.regs.SR&srSupervisor == 0 {
		return cpu.exception(XPrivViolation)
	}

	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	w2 := uint16(ext)

	switch w2 >> 13 {
	case 0x4:
		return pmmuMove(cpu, w2, faultPC)
	case 0x1:
		return pmmuFlush(cpu, w2)
	case 0x2:
		return pmmuTest(cpu, w2)
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
}

// pmmuMove transfers TC/SRP/CRP to or from memory (extension word bits
// 15-13 = 100).
//
// CRP is this core's name for the "current" root pointer a non-supervisor
// access walks; mmu.State stores it as URP, since mmu.Translate already
// picks URP/SRP by the access's supervisor bit the same way real hardware
// picks CRP/SRP.
func pmmuMove(cpu *cpu, w2 uint16, faultPC uint32) error {
	toEA := w2&0x0200 != 0
	reg := pmmuRegister((w2 >> 10) & 0x7)

	ea, err := cpu.ResolveSrcEA(Long)
	if err != nil {
		return err
	}

	switch reg {
	case pmmuRegTC:
		if toEA {
			return ea.write(cpu.mmuState.TC)
		}
		v, err := ea.read()
		if err != nil {
			return err
		}
		cpu.mmuState.TC = v
		return nil
	case pmmuRegSRP:
		return pmmuMoveRootPointer(cpu, ea, toEA, &cpu.mmuState.SRP)
	case pmmuRegCRP:
		return pmmuMoveRootPointer(cpu, ea, toEA, &cpu.mmuState.URP)
	default:
		return cpu.raiseException(vectorFPUnimplemented, faultPC)
	}
}

// pmmuMoveRootPointer transfers a 32-bit root-pointer register to or from
// memory. Real hardware moves a 64-bit limit:aptr pair; this core's
// mmu.State keeps only the pointer half, so the limit word is read as zero
// and discarded on write (documented simplification, see DESIGN.md).
func pmmuMoveRootPointer(cpu *cpu, ea modifier, toEA bool, reg *uint32) error {
	addr := ea.computedAddress()
	if toEA {
		if err := cpu.write(Long, addr, 0); err != nil {
			return err
		}
		return cpu.write(Long, addr+4, *reg)
	}
	v, err := cpu.read(Long, addr+4)
	if err != nil {
		return err
	}
	*reg = v
	return nil
}

// pmmuOperandAddress reads the logical address a PFLUSH/PTEST operand
// names: the contents of a data/address register for register-direct
// addressing, or the resolved effective address for every memory mode.
func pmmuOperandAddress(ea modifier) (uint32, error) {
	if r, ok := ea.(*eaRegister); ok {
		return r.read()
	}
	return ea.computedAddress(), nil
}

// pmmuFlush implements PFLUSHA and PFLUSH/PFLUSHN (extension word bits
// 15-13 = 001). Bit 12 set selects PFLUSHA, invalidating every ATC entry
// regardless of <ea>; otherwise the operand names a logical address whose
// page is flushed. This core's ATC has no global/non-global distinction,
// so PFLUSH and PFLUSHN are modeled identically.
func pmmuFlush(cpu *cpu, w2 uint16) error {
	if w2&0x1000 != 0 {
		cpu.mmuState.Flush()
		return nil
	}

	ea, err := cpu.ResolveSrcEA(Long)
	if err != nil {
		return err
	}
	addr, err := pmmuOperandAddress(ea)
	if err != nil {
		return err
	}
	cpu.mmuState.FlushPage(addr)
	return nil
}

// pmmuTest implements PTEST (extension word bits 15-13 = 010): it probes
// the translation for <ea> without faulting on a miss, depositing the
// result in mmu.State's MMUSR instead. Bit 8 selects a write-access probe;
// bit 9, when set, also stores the translated physical address into the
// address register named by bits 7-5.
func pmmuTest(cpu *cpu, w2 uint16) error {
	write := w2&0x0100 != 0
	storeResult := w2&0x0200 != 0
	resultReg := (w2 >> 5) & 0x7

	ea, err := cpu.ResolveSrcEA(Long)
	if err != nil {
		return err
	}
	addr, err := pmmuOperandAddress(ea)
	if err != nil {
		return err
	}

	supervisor := cpu.regs.SR&srSupervisor != 0
	phys, err := mmu.Translate(&cpu.mmuState, busMemory{cpu.bus}, addr, supervisor, write)
	if accessErr, ok := err.(mmu.AccessError); ok {
		cpu.mmuState.MMUSR = mmu.MMUSRInvalid
		if accessErr.WriteProtected {
			cpu.mmuState.MMUSR |= mmu.MMUSRWriteProtected
		}
		if accessErr.SupervisorOnly {
			cpu.mmuState.MMUSR |= mmu.MMUSRSupervisorOnly
		}
		return nil
	}
	if err != nil {
		return err
	}

	cpu.mmuState.MMUSR = mmu.MMUSRResident
	if storeResult {
		cpu.regs.A[resultReg] = phys
	}
	return nil
}
