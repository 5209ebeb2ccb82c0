package m68k

import "testing"

func TestMulULongNarrow(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 6
	cpu.regs.D[1] = 7

	cpu.regs.IR = 0x4c00 // MUL.L Dn,Dl ea mode=000 reg=1 -> <ea> is D1
	cpu.regs.IR |= 1     // ea reg = D1
	writeWords(t, ram, cpu.regs.PC, 0) // ext: unsigned, narrow, dl=D0

	if err := mulDivLong(cpu); err != nil {
		t.Fatalf("mulDivLong failed: %v", err)
	}
	if cpu.regs.D[0] != 42 {
		t.Fatalf("MULU.L: got %d want 42", cpu.regs.D[0])
	}
	if cpu.regs.SR&srZero != 0 {
		t.Fatalf("zero flag should be clear, SR=%04x", cpu.regs.SR)
	}
}

func TestMulSLongWideOverflow(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 0x10000
	cpu.regs.D[1] = 0x10000

	cpu.regs.IR = 0x4c00 | 1

	ext := uint16(0)
	ext |= 1 << 11 // signed
	ext |= 1 << 10 // wide: 64-bit result
	ext |= 2       // Dh = D2
	writeWords(t, ram, cpu.regs.PC, ext)

	if err := mulDivLong(cpu); err != nil {
		t.Fatalf("mulDivLong failed: %v", err)
	}
	if cpu.regs.D[0] != 0 {
		t.Fatalf("low word: got %#x want 0", cpu.regs.D[0])
	}
	if cpu.regs.D[2] != 1 {
		t.Fatalf("high word: got %#x want 1", cpu.regs.D[2])
	}
	if cpu.regs.SR&srOverflow != 0 {
		t.Fatalf("wide multiply should not set overflow, SR=%04x", cpu.regs.SR)
	}
}

func TestDivULongBasic(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 100
	cpu.regs.D[1] = 7

	cpu.regs.IR = 0x4c40 | 1 // DIV.L <ea>=D1, ext selects Dq=D0 Dr=D0

	writeWords(t, ram, cpu.regs.PC, 0) // unsigned, narrow, dq=0, dr=0

	if err := mulDivLong(cpu); err != nil {
		t.Fatalf("mulDivLong failed: %v", err)
	}
	if cpu.regs.D[0] != 14 {
		t.Fatalf("quotient: got %d want 14", cpu.regs.D[0])
	}
}

func TestDivULongWithRemainder(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 100
	cpu.regs.D[1] = 7

	cpu.regs.IR = 0x4c40 | 1

	ext := uint16(0)
	ext |= 1 // Dr = D1
	writeWords(t, ram, cpu.regs.PC, ext)

	if err := mulDivLong(cpu); err != nil {
		t.Fatalf("mulDivLong failed: %v", err)
	}
	if cpu.regs.D[0] != 14 {
		t.Fatalf("quotient: got %d want 14", cpu.regs.D[0])
	}
	if cpu.regs.D[1] != 2 {
		t.Fatalf("remainder: got %d want 2", cpu.regs.D[1])
	}
}

func TestDivULongByZero(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 100
	cpu.regs.D[1] = 0
	if err := ram.Write(Long, vectorZeroDivide<<2, 0x4000); err != nil {
		t.Fatalf("failed to seed zero-divide vector: %v", err)
	}

	cpu.regs.IR = 0x4c40 | 1
	writeWords(t, ram, cpu.regs.PC, 0)

	if err := mulDivLong(cpu); err != nil {
		t.Fatalf("mulDivLong failed: %v", err)
	}
	if cpu.regs.PC != 0x4000 {
		t.Fatalf("divide by zero should trap via vector 5, PC=%#x", cpu.regs.PC)
	}
}
