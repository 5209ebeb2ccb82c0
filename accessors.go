package m68k

import (
	"github.com/benletchford/m68k/fpu"
	"github.com/benletchford/m68k/mmu"
)

type fpuState = fpu.State
type mmuState = mmu.State

func newFPUState() fpuState { return fpu.New() }
func newMMUState() mmuState { return mmu.New() }

// busMemory adapts the cpu's AddressBus to the narrow mmu.Memory interface
// the table walker needs, always reading physical addresses at Long width.
type busMemory struct{ bus AddressBus }

func (m busMemory) ReadLong(address uint32) (uint32, error) {
	return m.bus.Read(Long, address)
}

// translate resolves a logical address through the active MMU, when
// enabled, into a physical one plus the function code the access should be
// tagged with. Instruction-fetch vs. data distinction is not tracked per
// call site; every access is tagged as a data reference, which is
// sufficient for TTR/page matching since this core's TTRs are not split by
// fetch type.
func (cpu *cpu) translate(logical uint32, write bool) (uint32, uint8, error) {
	fc := cpu.currentFC(false)
	supervisor := cpu.regs.SR&srSupervisor != 0

	if !cpu.mmuState.Enabled {
		return logical, fc, nil
	}

	phys, err := mmu.Translate(&cpu.mmuState, busMemory{cpu.bus}, logical, supervisor, write)
	if err != nil {
		if cpu.logger != nil {
			cpu.logger.Printf("m68k: mmu fault at %#08x: %v", logical, err)
		}
		return 0, fc, cpu.mmuFaultToException(err)
	}
	return phys, fc, nil
}

func (cpu *cpu) mmuFaultToException(err error) error {
	if _, ok := err.(mmu.AccessError); ok {
		return BusError(cpu.regs.PC)
	}
	return err
}

// fpuAccessor exposes the FPU register file to embedders through the
// narrow CPU interface without leaking the fpu package's internal State
// shape.
type fpuAccessor struct{ cpu *cpu }

func (f *fpuAccessor) Get(reg int) float64      { return f.cpu.fpuState.FP[reg] }
func (f *fpuAccessor) Set(reg int, v float64)   { f.cpu.fpuState.Move(reg, v) }
func (f *fpuAccessor) FPCR() uint32             { return f.cpu.fpuState.FPCR }
func (f *fpuAccessor) SetFPCR(v uint32)         { f.cpu.fpuState.FPCR = v }
func (f *fpuAccessor) FPSR() uint32             { return f.cpu.fpuState.FPSR }
func (f *fpuAccessor) FPIAR() uint32            { return f.cpu.fpuState.FPIAR }
func (f *fpuAccessor) SetTrapTranscendentals(b bool) { f.cpu.fpuState.TrapTranscendentals = b }

// mmuAccessor exposes PMMU configuration and ATC maintenance to embedders.
type mmuAccessor struct{ cpu *cpu }

func (m *mmuAccessor) Enable(enabled bool)         { m.cpu.mmuState.Enabled = enabled }
func (m *mmuAccessor) Enabled() bool               { return m.cpu.mmuState.Enabled }
func (m *mmuAccessor) SetSRP(v uint32)             { m.cpu.mmuState.SRP = v }
func (m *mmuAccessor) SetURP(v uint32)             { m.cpu.mmuState.URP = v }
func (m *mmuAccessor) SetTC(v uint32)              { m.cpu.mmuState.TC = v }
func (m *mmuAccessor) FlushAll()                   { m.cpu.mmuState.Flush() }
func (m *mmuAccessor) FlushPage(logical uint32)     { m.cpu.mmuState.FlushPage(logical) }
func (m *mmuAccessor) MMUSR() uint32                { return m.cpu.mmuState.MMUSR }

func (cpu *cpu) FPU() *fpuAccessor { return &fpuAccessor{cpu: cpu} }
func (cpu *cpu) MMU() *mmuAccessor { return &mmuAccessor{cpu: cpu} }
