package m68k

import "fmt"

// SR bit masks. The low byte is the CCR (X,N,Z,V,C); the high byte carries
// trace, supervisor/master, and interrupt-priority-mask bits.
const (
	srCarry         uint16 = 0x0001
	srOverflow      uint16 = 0x0002
	srZero          uint16 = 0x0004
	srNegative      uint16 = 0x0008
	srExtend        uint16 = 0x0010
	srInterruptMask uint16 = 0x0700
	srMaster        uint16 = 0x1000
	srSupervisor    uint16 = 0x2000
	srTrace0        uint16 = 0x4000
	srTrace1        uint16 = 0x8000

	srCCRMask = srCarry | srOverflow | srZero | srNegative | srExtend
)

// Function codes used to qualify bus accesses made through FCAddressBus.
const (
	FCUserData          = 1
	FCUserProgram        = 2
	FCSupervisorData     = 5
	FCSupervisorProgram  = 6
	FCCPUSpace           = 7
)

// Registers is the programmer-visible architectural state of an M68K CPU.
// It is returned by value from CPU.Registers so callers cannot mutate CPU
// state through the returned struct.
type Registers struct {
	D   [8]int32
	A   [8]uint32
	PC  uint32
	SR  uint16
	USP uint32
	SSP uint32
	MSP uint32
	VBR uint32
	SFC uint8
	DFC uint8
	CACR uint32
	CAAR uint32
	IR  uint16 // instruction register: the opcode word currently executing
}

func (regs *Registers) String() string {
	result := fmt.Sprintf("SR %04x PC %08x USP %08x SSP %08x MSP %08x VBR %08x A7 %08x\n",
		regs.SR, regs.PC, regs.USP, regs.SSP, regs.MSP, regs.VBR, regs.A[7])
	for i := range regs.D {
		result += fmt.Sprintf("D%d %08x ", i, uint32(regs.D[i]))
	}
	result += "\n"
	for i := range regs.A {
		result += fmt.Sprintf("A%d %08x ", i, regs.A[i])
	}
	result += "\n"
	return result
}

// activeStackBank reports which physical stack pointer A7 currently aliases,
// per spec.md's (S, M, CPU) selector. 68000/68010 have no M bit: M is always
// treated as supervisor/ISP.
func activeStackBank(sr uint16, hasMBit bool) (isUser, isMaster bool) {
	isUser = sr&srSupervisor == 0
	if isUser {
		return true, false
	}
	isMaster = hasMBit && sr&srMaster != 0
	return false, isMaster
}

// bankA7 copies the outgoing bank's value out of A[7] into its dedicated
// slot and installs the incoming bank's value into A[7]. It must be called
// whenever S or M changes so that A[7] always reflects the active bank.
func (cpu *cpu) bankA7(oldSR, newSR uint16) {
	hasM := cpu.cpuType.caps().hasMBit
	oldUser, oldMaster := activeStackBank(oldSR, hasM)
	newUser, newMaster := activeStackBank(newSR, hasM)
	if oldUser == newUser && oldMaster == newMaster {
		return
	}

	switch {
	case oldUser:
		cpu.regs.USP = cpu.regs.A[7]
	case oldMaster:
		cpu.regs.MSP = cpu.regs.A[7]
	default:
		cpu.regs.SSP = cpu.regs.A[7]
	}

	switch {
	case newUser:
		cpu.regs.A[7] = cpu.regs.USP
	case newMaster:
		cpu.regs.A[7] = cpu.regs.MSP
	default:
		cpu.regs.A[7] = cpu.regs.SSP
	}
}
