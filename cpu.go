package m68k

import (
	"fmt"
	"log"
)

type (
	instruction func(*cpu) error

	AddressError uint32
	BusError     uint32

	// UnsupportedOperationError describes an opcode that is decoded but not
	// implemented for a CPU variant. No code path in this package returns
	// it: such opcodes are dispatched by dispatchUnhandled to an illegal,
	// line-A, line-F or FPU-unimplemented exception instead.
	UnsupportedOperationError struct {
		Opcode  uint16
		CPUType CPUType
	}

	BreakpointType int

	// cycleCalculator builds a static cycle count for a given opcode.
	// Results are stored in opcodeCycleTable during instruction registration
	// and looked up at execution time for fixed-cost instructions.
	cycleCalculator func(opcode uint16) uint32

	TraceInfo struct {
		PC        uint32
		SR        uint16
		Registers Registers
	}

	TraceCallback func(TraceInfo)

	Breakpoint struct {
		Address   uint32
		OnExecute bool
		OnRead    bool
		OnWrite   bool
		Halt      bool
		Callback  func(BreakpointEvent) error
	}

	BreakpointEvent struct {
		Type      BreakpointType
		Address   uint32
		Registers Registers
	}

	BreakpointHit struct {
		Address uint32
		Type    BreakpointType
	}

	// CPU exposes the embedder-facing interface of the execution engine.
	CPU interface {
		Registers() Registers
		Step() error
		StepWithHLEHandler(HleHandler) error
		RunCycles(budget uint64) error
		Reset() error
		SetTracer(TraceCallback)
		AddBreakpoint(Breakpoint)
		RequestInterrupt(level uint8, vector *uint8) error
		Cycles() uint64
		Stopped() bool
		Type() CPUType

		SetD(n int, v uint32)
		SetA(n int, v uint32)
		SetPC(v uint32)
		SetSR(v uint16)
		SetVBR(v uint32)
		SetUSP(v uint32)
		SetISP(v uint32)
		SetMSP(v uint32)

		FPU() *fpuAccessor
		MMU() *mmuAccessor
	}

	// cpu is the concrete CPU core. All architectural state is held here;
	// it is mutated only by the single executing instruction or by
	// exception acceptance, per the single-threaded cooperative model.
	cpu struct {
		regs    Registers
		cpuType CPUType
		cycles  uint64
		bus     AddressBus
		trap    TraceCallback
		logger  *log.Logger

		interrupts *InterruptController
		mmuState   mmuState
		fpuState   fpuState

		stopped     bool
		pendingTrace bool

		// faultAddress/faultWrite record the access an address error was
		// raised for, so the 68000/68010 bus/address error stack frame can
		// report them; exception() reads these only when the frame format
		// for the vector being taken calls for them.
		faultAddress uint32
		faultWrite   bool

		breakpoints map[uint32]Breakpoint
	}
)

const (
	BreakpointExecute BreakpointType = iota
	BreakpointRead
	BreakpointWrite
)

func (ae AddressError) Error() string {
	return fmt.Sprintf("address error at %#08x", uint32(ae))
}

func (be BusError) Error() string {
	return fmt.Sprintf("bus error at %#08x", uint32(be))
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("opcode %#04x unsupported on %s", e.Opcode, e.CPUType)
}

func (bh BreakpointHit) Error() string {
	return fmt.Sprintf("breakpoint hit at %#08x (%v)", bh.Address, bh.Type)
}

func (bt BreakpointType) String() string {
	switch bt {
	case BreakpointExecute:
		return "execute"
	case BreakpointRead:
		return "read"
	case BreakpointWrite:
		return "write"
	default:
		return "unknown"
	}
}

func (cpu *cpu) String() string {
	return cpu.regs.String()
}

// read performs a logical-address access through the MMU (when enabled)
// and the embedder bus, charging a breakpoint check along the way. Word and
// long accesses to an odd address fault on variants that require alignment.
func (cpu *cpu) read(size Size, address uint32) (uint32, error) {
	if cpu.cpuType.caps().oddAddressFault && size != Byte && address&1 != 0 {
		cpu.faultAddress, cpu.faultWrite = address, false
		return 0, AddressError(address)
	}
	if err := cpu.checkAccessBreakpoint(address, BreakpointRead); err != nil {
		return 0, err
	}

	phys, fc, err := cpu.translate(address, false)
	if err != nil {
		return 0, err
	}
	return cpu.busRead(size, phys, fc)
}

func (cpu *cpu) write(size Size, address uint32, value uint32) error {
	if cpu.cpuType.caps().oddAddressFault && size != Byte && address&1 != 0 {
		cpu.faultAddress, cpu.faultWrite = address, true
		return AddressError(address)
	}
	if err := cpu.checkAccessBreakpoint(address, BreakpointWrite); err != nil {
		return err
	}

	phys, fc, err := cpu.translate(address, true)
	if err != nil {
		return err
	}
	return cpu.busWrite(size, phys, value, fc)
}

func (cpu *cpu) currentFC(program bool) uint8 {
	supervisor := cpu.regs.SR&srSupervisor != 0
	switch {
	case supervisor && program:
		return FCSupervisorProgram
	case supervisor && !program:
		return FCSupervisorData
	case !supervisor && program:
		return FCUserProgram
	default:
		return FCUserData
	}
}

func (cpu *cpu) busRead(size Size, address uint32, fc uint8) (uint32, error) {
	if fcBus, ok := cpu.bus.(FCAddressBus); ok {
		return fcBus.ReadFC(size, address, fc)
	}
	return cpu.bus.Read(size, address)
}

func (cpu *cpu) busWrite(size Size, address uint32, value uint32, fc uint8) error {
	if fcBus, ok := cpu.bus.(FCAddressBus); ok {
		return fcBus.WriteFC(size, address, value, fc)
	}
	return cpu.bus.Write(size, address, value)
}

func (cpu *cpu) Registers() Registers {
	return cpu.regs
}

func (cpu *cpu) Type() CPUType { return cpu.cpuType }

func (cpu *cpu) Stopped() bool { return cpu.stopped }

func (cpu *cpu) SetTracer(cb TraceCallback) {
	cpu.trap = cb
}

func (cpu *cpu) RequestInterrupt(level uint8, vector *uint8) error {
	return cpu.interrupts.Request(level, vector)
}

func (cpu *cpu) AddBreakpoint(bp Breakpoint) {
	if cpu.breakpoints == nil {
		cpu.breakpoints = make(map[uint32]Breakpoint)
	}
	cpu.breakpoints[bp.Address] = bp
}

func (cpu *cpu) SetD(n int, v uint32)   { cpu.regs.D[n] = int32(v) }
func (cpu *cpu) SetA(n int, v uint32)   { cpu.regs.A[n] = v }
func (cpu *cpu) SetPC(v uint32)         { cpu.regs.PC = v }
func (cpu *cpu) SetSR(v uint16)         { cpu.setSR(v) }
func (cpu *cpu) SetVBR(v uint32)        { cpu.regs.VBR = v }
func (cpu *cpu) SetUSP(v uint32)        { cpu.regs.USP = v }
func (cpu *cpu) SetISP(v uint32)        { cpu.regs.SSP = v }
func (cpu *cpu) SetMSP(v uint32)        { cpu.regs.MSP = v }

func (cpu *cpu) handleBreakpoint(bp Breakpoint, kind BreakpointType, address uint32) error {
	event := BreakpointEvent{Type: kind, Address: address, Registers: cpu.regs}
	if bp.Callback != nil {
		if err := bp.Callback(event); err != nil {
			return err
		}
	}

	if bp.Halt {
		return BreakpointHit{Address: address, Type: kind}
	}

	return nil
}

// executeInstruction runs the decoded opcode to completion. Bus and address
// errors raised by the handler are translated into their architectural
// exception; any other error (e.g. a breakpoint hit) is returned as-is to
// the caller without mutating further state.
func (cpu *cpu) executeInstruction(opcode uint16, hle HleHandler) error {
	cpu.regs.IR = opcode

	if !cpu.variantSupports(opcode) {
		return cpu.dispatchUnhandled(opcode, hle)
	}

	if hle != nil && opcode&0xFFF0 == 0x4E40 {
		// TRAP has its own handler and never reaches dispatchUnhandled, so
		// it is offered to the HLE handler here.
		if handled, err := offerHLE(cpu, opcode, unhandledIllegal, hle); err != nil || handled {
			return err
		}
	}

	cpu.addCycles(opcodeCycleTable[opcode])
	if err := opcodeTable[opcode](cpu); err != nil {
		switch err.(type) {
		case BusError:
			return cpu.exception(vectorBusError)
		case AddressError:
			return cpu.exception(vectorAddressError)
		default:
			return err
		}
	}
	return nil
}

// step is the single shared implementation behind Step and
// StepWithHLEHandler; hle is nil for the former.
func (cpu *cpu) step(hle HleHandler) error {
	if cpu.stopped {
		if err := cpu.checkInterrupts(); err != nil {
			return err
		}
		return nil
	}

	if cpu.pendingTrace {
		cpu.pendingTrace = false
		if err := cpu.exception(vectorTrace); err != nil {
			return err
		}
		return nil
	}

	if err := cpu.checkInterrupts(); err != nil {
		return err
	}
	if cpu.stopped {
		return nil
	}

	if err := cpu.checkExecuteBreakpoint(cpu.regs.PC); err != nil {
		return err
	}

	pc := cpu.regs.PC
	opcode, err := cpu.fetchOpcode()
	if err != nil {
		return err
	}

	traceBit := cpu.regs.SR&srTrace1 != 0
	branchish := isControlFlowOpcode(opcode)

	if err := cpu.executeInstruction(opcode, hle); err != nil {
		return err
	}

	if traceBit || (cpu.cpuType.caps().hasTraceT0 && cpu.regs.SR&srTrace0 != 0 && branchish) {
		cpu.pendingTrace = true
	}

	cpu.sendTrace(pc)
	return nil
}

// Step fetches the next opcode at the program counter and executes it,
// taking the hardware exception for A-line/F-line/TRAP/BKPT/illegal
// opcodes directly.
func (cpu *cpu) Step() error { return cpu.step(nil) }

// StepWithHLEHandler behaves like Step but first offers A-line, F-line,
// TRAP, BKPT, and illegal-instruction opcodes to handler. If handler
// returns true, the CPU treats the opcode as already serviced (PC has
// advanced past it) and skips the hardware exception.
func (cpu *cpu) StepWithHLEHandler(handler HleHandler) error { return cpu.step(handler) }

// RunCycles executes instructions until at least the requested number of
// cycles have elapsed. Execution may exceed the budget when the final
// instruction's cost pushes the cycle count past the requested amount.
func (cpu *cpu) RunCycles(budget uint64) error {
	start := cpu.cycles
	for cpu.cycles-start < budget {
		before := cpu.cycles
		if err := cpu.Step(); err != nil {
			return err
		}
		if cpu.stopped {
			return nil
		}
		if cpu.cycles == before {
			return fmt.Errorf("execution stalled at %#04x: cycles not advancing", cpu.regs.PC)
		}
	}
	return nil
}

func (cpu *cpu) sendTrace(pc uint32) {
	if cpu.trap == nil {
		return
	}
	cpu.trap(TraceInfo{PC: pc, SR: cpu.regs.SR, Registers: cpu.regs})
}

func (cpu *cpu) checkExecuteBreakpoint(pc uint32) error {
	if cpu.breakpoints == nil {
		return nil
	}
	if bp, ok := cpu.breakpoints[pc]; ok && bp.OnExecute {
		return cpu.handleBreakpoint(bp, BreakpointExecute, pc)
	}
	return nil
}

func (cpu *cpu) checkAccessBreakpoint(address uint32, kind BreakpointType) error {
	if cpu.breakpoints == nil {
		return nil
	}

	bp, ok := cpu.breakpoints[address]
	if !ok {
		return nil
	}

	switch kind {
	case BreakpointRead:
		if !bp.OnRead {
			return nil
		}
	case BreakpointWrite:
		if !bp.OnWrite {
			return nil
		}
	}

	return cpu.handleBreakpoint(bp, kind, address)
}

func (cpu *cpu) fetchOpcode() (uint16, error) {
	v, err := cpu.read(Word, cpu.regs.PC)
	if err != nil {
		return 0, err
	}
	cpu.regs.PC += uint32(Word)
	return uint16(v), nil
}

// Config selects the CPU variant and optional ambient services for NewCPU.
type Config struct {
	Type   CPUType
	Logger *log.Logger
}

func (cpu *cpu) Reset() error {
	cpu.regs = Registers{SR: 0x2700}
	cpu.interrupts = NewInterruptController()
	cpu.stopped = false
	cpu.pendingTrace = false
	cpu.mmuState = newMMUState()
	cpu.fpuState = newFPUState()

	ssp, err := cpu.bus.Read(Long, 0)
	if err != nil {
		return err
	}
	cpu.regs.A[7] = ssp
	cpu.regs.SSP = ssp

	pc, err := cpu.bus.Read(Long, 4)
	if err != nil {
		return err
	}
	cpu.regs.PC = pc
	cpu.cycles = 0

	if cpu.logger != nil {
		cpu.logger.Printf("m68k: reset %s, SSP=%#08x PC=%#08x", cpu.cpuType, ssp, pc)
	}
	return nil
}

// NewCPU constructs a CPU of the configured variant over bus. Reset is
// called automatically, loading SSP/PC from the vector table at [VBR+0] and
// [VBR+4] (VBR starts at 0, matching real hardware reset behaviour).
func NewCPU(bus AddressBus, cfg Config) (CPU, error) {
	c := &cpu{bus: bus, cpuType: cfg.Type, logger: cfg.Logger}

	if b, ok := bus.(*Bus); ok {
		previous := b.waitHook
		b.SetWaitHook(func(states uint32) {
			if previous != nil {
				previous(states)
			}
			c.addCycles(states)
		})
	}

	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (cpu *cpu) push(s Size, value uint32) error {
	cpu.regs.A[7] -= uint32(s)
	return cpu.write(s, cpu.regs.A[7], value)
}

func (cpu *cpu) pop(s Size) (uint32, error) {
	res, err := cpu.read(s, cpu.regs.A[7])
	if err != nil {
		return 0, err
	}
	cpu.regs.A[7] += uint32(s)
	return res, nil
}

func (cpu *cpu) popPc(s Size) (uint32, error) {
	res, err := cpu.read(s, cpu.regs.PC)
	if err != nil {
		return 0, err
	}
	cpu.regs.PC += uint32(s)
	if cpu.regs.PC&1 != 0 {
		cpu.regs.PC++ // extension words are always word-aligned
	}
	return res, nil
}

// addCycles increments the CPU cycle counter using a uint32 input to keep
// call sites close to the 68k reference values while storing the counter
// as a wider type.
func (cpu *cpu) addCycles(c uint32) {
	cpu.cycles += uint64(c)
}

// Cycles returns the total number of cycles executed since the last reset.
func (cpu *cpu) Cycles() uint64 {
	return cpu.cycles
}

func constantCycles(c uint32) cycleCalculator {
	return func(uint16) uint32 {
		return c
	}
}
