package m68k

import "testing"

func TestPackRegisterToRegister(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 0x0102 // unpacked digits 1 and 2

	cpu.regs.IR = uint16(0x8140) | 1<<9 // PACK D0,D1: src Dy=D0 (y=0), dst Dx=D1 (x=1)
	writeWords(t, ram, cpu.regs.PC, 0x0000)

	if err := pack(cpu); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	if got := cpu.regs.D[1] & 0xff; got != 0x12 {
		t.Fatalf("PACK D0,D1: got %#02x want %#02x", got, 0x12)
	}
}

func TestPackRegisterWithAdjustment(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 0x0102

	cpu.regs.IR = uint16(0x8140) | 1<<9
	writeWords(t, ram, cpu.regs.PC, 0x0001)

	if err := pack(cpu); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	if got := cpu.regs.D[1] & 0xff; got != 0x13 {
		t.Fatalf("PACK D0,D1 with adjustment: got %#02x want %#02x", got, 0x13)
	}
}

func TestPackMemoryToMemory(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.A[0] = 0x2002
	cpu.regs.A[1] = 0x3001

	if err := ram.Write(Word, 0x2000, 0x0506); err != nil {
		t.Fatalf("failed to seed source word: %v", err)
	}

	cpu.regs.IR = uint16(0x8140) | 1<<9 | 1<<3 // mode=1 memory, Ay=0 src, Ax=1 dst
	writeWords(t, ram, cpu.regs.PC, 0x0000)

	if err := pack(cpu); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	if cpu.regs.A[0] != 0x2000 || cpu.regs.A[1] != 0x3000 {
		t.Fatalf("pointers not predecremented: A0=%#x A1=%#x", cpu.regs.A[0], cpu.regs.A[1])
	}
	got, err := ram.Read(Byte, 0x3000)
	if err != nil {
		t.Fatalf("failed to read packed result: %v", err)
	}
	if got != 0x56 {
		t.Fatalf("PACK -(A0),-(A1): got %#02x want %#02x", got, 0x56)
	}
}

func TestUnpkRegisterToRegister(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.D[0] = 0x12 // packed digits 1 and 2

	cpu.regs.IR = uint16(0x8180) | 1<<9
	writeWords(t, ram, cpu.regs.PC, 0x0000)

	if err := unpk(cpu); err != nil {
		t.Fatalf("unpk failed: %v", err)
	}
	if got := cpu.regs.D[1] & 0xffff; got != 0x0102 {
		t.Fatalf("UNPK D0,D1: got %#04x want %#04x", got, 0x0102)
	}
}

func TestUnpkMemoryToMemory(t *testing.T) {
	cpu, ram := newVariantEnvironment(t, M68020)
	cpu.regs.A[0] = 0x2001
	cpu.regs.A[1] = 0x3002

	if err := ram.Write(Byte, 0x2000, 0x56); err != nil {
		t.Fatalf("failed to seed source byte: %v", err)
	}

	cpu.regs.IR = uint16(0x8180) | 1<<9 | 1<<3
	writeWords(t, ram, cpu.regs.PC, 0x0000)

	if err := unpk(cpu); err != nil {
		t.Fatalf("unpk failed: %v", err)
	}
	if cpu.regs.A[0] != 0x2000 || cpu.regs.A[1] != 0x3000 {
		t.Fatalf("pointers not predecremented: A0=%#x A1=%#x", cpu.regs.A[0], cpu.regs.A[1])
	}
	got, err := ram.Read(Word, 0x3000)
	if err != nil {
		t.Fatalf("failed to read unpacked result: %v", err)
	}
	if got != 0x0506 {
		t.Fatalf("UNPK -(A0),-(A1): got %#04x want %#04x", got, 0x0506)
	}
}
