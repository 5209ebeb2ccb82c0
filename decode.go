package m68k

import "fmt"

// eaMask* bitmasks enumerate which of the 12 basic 68000 addressing modes
// (grouped by the low 6 bits of the opcode) an instruction accepts for its
// <ea> operand, exactly as the teacher's registerInstruction/validEA pair
// uses them.
const (
	eaMaskDataRegister    uint16 = 0x0800
	eaMaskAddressRegister uint16 = 0x0400
	eaMaskIndirect        uint16 = 0x0200
	eaMaskPostIncrement   uint16 = 0x0100
	eaMaskPreDecrement    uint16 = 0x0080
	eaMaskDisplacement    uint16 = 0x0040
	eaMaskIndex           uint16 = 0x0020
	eaMaskAbsoluteShort   uint16 = 0x0010
	eaMaskAbsoluteLong    uint16 = 0x0008
	eaMaskImmediate       uint16 = 0x0004
	eaMaskPCDisplacement  uint16 = 0x0002
	eaMaskPCIndex         uint16 = 0x0001
)

var opcodeTable [0x10000]instruction
var opcodeCycleTable [0x10000]uint32

// opcodeCapTable records, for opcodes only available on some CPU variants
// (020+ extensions, on-chip FPU/PMMU coprocessor instructions), the
// predicate the active CPU's capability table must satisfy. A nil entry
// means the opcode, once registered, is available on every variant this
// core emulates.
var opcodeCapTable [0x10000]func(capabilities) bool

// registerInstruction adds an opcode handler available on every CPU
// variant by delegating to registerInstructionIf with no capability gate.
func registerInstruction(ins instruction, match, mask uint16, eaMask uint16, calc cycleCalculator) {
	registerInstructionIf(ins, match, mask, eaMask, calc, nil)
}

// registerInstructionIf is registerInstruction extended with a capability
// gate, used for 020+-only ALU extensions and FPU/PMMU coprocessor
// instructions that only some CPUType values support.
func registerInstructionIf(ins instruction, match, mask uint16, eaMask uint16, calc cycleCalculator, requiredCap func(capabilities) bool) {
	for value := uint16(0); ; {
		index := match | value
		if validEA(index, eaMask) {
			if opcodeTable[index] != nil {
				panic(fmt.Errorf("instruction 0x%04x already registered", index))
			}
			opcodeTable[index] = ins
			if calc != nil {
				opcodeCycleTable[index] = calc(index)
			}
			if requiredCap != nil {
				opcodeCapTable[index] = requiredCap
			}
		}

		value = ((value | mask) + 1) & ^mask
		if value == 0 {
			break
		}
	}
}

func validEA(opcode, mask uint16) bool {
	if mask == 0 {
		return true
	}

	switch opcode & 0x3f {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return (mask & eaMaskDataRegister) != 0
	case 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f:
		return (mask & eaMaskAddressRegister) != 0
	case 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17:
		return (mask & eaMaskIndirect) != 0
	case 0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f:
		return (mask & eaMaskPostIncrement) != 0
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27:
		return (mask & eaMaskPreDecrement) != 0
	case 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f:
		return (mask & eaMaskDisplacement) != 0
	case 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37:
		return (mask & eaMaskIndex) != 0
	case 0x38:
		return (mask & eaMaskAbsoluteShort) != 0
	case 0x39:
		return (mask & eaMaskAbsoluteLong) != 0
	case 0x3a:
		return (mask & eaMaskPCDisplacement) != 0
	case 0x3b:
		return (mask & eaMaskPCIndex) != 0
	case 0x3c:
		return (mask & eaMaskImmediate) != 0
	}
	return false
}

// variantSupports reports whether opcode's registration, if any, is
// available on the active CPU's capability table.
func (cpu *cpu) variantSupports(opcode uint16) bool {
	if opcodeTable[opcode] == nil {
		return false
	}
	cap := opcodeCapTable[opcode]
	if cap == nil {
		return true
	}
	return cap(cpu.cpuType.caps())
}

type unhandledCategory int

const (
	unhandledIllegal unhandledCategory = iota
	unhandledLineA
	unhandledLineF
)

func classifyUnhandled(opcode uint16) unhandledCategory {
	switch opcode >> 12 {
	case 0xA:
		return unhandledLineA
	case 0xF:
		return unhandledLineF
	}
	return unhandledIllegal
}

// dispatchUnhandled decides which exception an opcode the dispatcher could
// not execute should raise, offering HLE first when the opcode falls in an
// A-line/F-line/TRAP/BKPT/illegal category a handler may intercept.
func (cpu *cpu) dispatchUnhandled(opcode uint16, hle HleHandler) error {
	category := classifyUnhandled(opcode)
	gatedButUnsupported := opcodeTable[opcode] != nil && opcodeCapTable[opcode] != nil

	if hle != nil {
		handled, err := offerHLE(cpu, opcode, category, hle)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}

	switch {
	case category == unhandledLineA:
		return cpu.raiseException(vectorLine1010, cpu.regs.PC-2)
	case category == unhandledLineF && gatedButUnsupported:
		// FPU-shaped opcode present but the variant has no attached
		// coprocessor.
		return cpu.raiseException(vectorFPUnimplemented, cpu.regs.PC-2)
	case category == unhandledLineF:
		return cpu.raiseException(vectorLine1111, cpu.regs.PC-2)
	default:
		return cpu.raiseException(vectorIllegal, cpu.regs.PC-2)
	}
}

// isControlFlowOpcode reports whether opcode is a Bcc/BSR/BRA/DBcc/JMP/JSR/
// RTS/RTE/RTR instruction, used to decide whether SR.T0 (trace-on-change-
// of-flow, 68020+) should arm a pending trace exception.
func isControlFlowOpcode(opcode uint16) bool {
	switch opcode >> 12 {
	case 0x4:
		// JSR/JMP occupy 0x4E80-0x4EFF; RTE, RTS and RTR are 0x4E73/75/77.
		return opcode&0xFF80 == 0x4E80 || opcode == 0x4E73 || opcode == 0x4E75 || opcode == 0x4E77
	case 0x6:
		return true
	}
	if opcode&0xF0F8 == 0x50C8 { // DBcc
		return true
	}
	return false
}
