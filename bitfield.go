package m68k

func init() {
	bitfieldMask := eaMaskDataRegister | eaMaskIndirect | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong | eaMaskPCDisplacement | eaMaskPCIndex

	for _, reg := range []struct {
		match uint16
		ins   instruction
	}{
		{0xe8c0, bftst},
		{0xe9c0, bfextu},
		{0xeac0, bfchg},
		{0xebc0, bfexts},
		{0xecc0, bfclr},
		{0xedc0, bfffo},
		{0xeec0, bfset},
		{0xefc0, bfins},
	} {
		registerInstructionIf(reg.ins, reg.match, 0xffc0, bitfieldMask, bitfieldCycles, has020ExtCap)
	}
}

func bitfieldCycles(opcode uint16) uint32 {
	if (opcode>>3)&0x7 == 0 {
		return 8
	}
	return 12
}

// bitFieldSpec is the decoded extension word shared by all BF* instructions:
// which Dn receives an extracted/inserted value, and the offset/width pair,
// each either a 5-bit immediate or taken from a data register.
type bitFieldSpec struct {
	reg    uint16
	offset uint32
	width  uint32
}

func decodeBitFieldSpec(cpu *cpu, ext uint16) bitFieldSpec {
	reg := (ext >> 12) & 0x7

	var offset uint32
	if ext&0x0800 != 0 {
		offset = uint32(cpu.regs.D[(ext>>6)&0x7])
	} else {
		offset = uint32(ext>>6) & 31
	}

	var width uint32
	if ext&0x0020 != 0 {
		width = uint32(cpu.regs.D[ext&0x7]) & 31
	} else {
		width = uint32(ext) & 31
	}
	if width == 0 {
		width = 32
	}

	return bitFieldSpec{reg: reg, offset: offset, width: width}
}

// bitFieldOperand holds whatever state a BF* instruction needs to write its
// field back, whether the operand lives in a data register or in a window of
// up to five bytes starting at a resolved memory address.
type bitFieldOperand struct {
	cpu       *cpu
	isReg     bool
	reg       uint16
	orig      uint32
	regOffset uint32
	startAddr uint32
	window    uint64
	bitInByte uint32
	bytesLen  int
}

func resolveBitFieldOperand(cpu *cpu, spec bitFieldSpec) (*bitFieldOperand, uint32, error) {
	mode := (cpu.regs.IR >> 3) & 0x7
	reg := cpu.regs.IR & 0x7

	if mode == 0 {
		orig := uint32(cpu.regs.D[reg])
		regOffset := spec.offset & 31
		field := bfExtractRegMSB0(orig, regOffset, spec.width)
		return &bitFieldOperand{cpu: cpu, isReg: true, reg: reg, orig: orig, regOffset: regOffset}, field, nil
	}

	ea, err := cpu.ResolveSrcEA(Byte)
	if err != nil {
		return nil, 0, err
	}
	base := ea.computedAddress()
	byteDisp := uint32(int32(spec.offset) >> 3)
	startAddr := base + byteDisp
	bitInByte := spec.offset & 7

	field, window, bytesLen, err := bfExtractMemWindow(cpu, startAddr, bitInByte, spec.width)
	if err != nil {
		return nil, 0, err
	}
	return &bitFieldOperand{cpu: cpu, startAddr: startAddr, window: window, bitInByte: bitInByte, bytesLen: bytesLen}, field, nil
}

func (op *bitFieldOperand) store(width, newField uint32) error {
	if op.isReg {
		newv := bfInsertRegMSB0(op.orig, op.regOffset, width, newField)
		op.cpu.regs.D[op.reg] = int32(newv)
		return nil
	}

	shift := 40 - (op.bitInByte + width)
	mask := uint64(bfMask(width)) << shift
	op.window = (op.window &^ mask) | (uint64(newField&bfMask(width)) << shift)
	return bfStoreMemWindow(op.cpu, op.startAddr, op.window, op.bytesLen)
}

func bfMask(width uint32) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return (1 << width) - 1
}

func bfSignExtend(field, width uint32) uint32 {
	if width >= 32 {
		return field
	}
	sign := uint32(1) << (width - 1)
	if field&sign != 0 {
		return field | (^uint32(0) << width)
	}
	return field
}

// bfFindFirstOne scans a field MSB-first for the first set bit, returning its
// absolute bit position (base_offset + distance from the field's MSB). When
// no bit is set it returns base_offset+width and reports so via the bool.
func bfFindFirstOne(field, width, baseOffset uint32) (uint32, bool) {
	if field == 0 {
		return baseOffset + width, true
	}
	for i := uint32(0); i < width; i++ {
		if (field>>(width-1-i))&1 != 0 {
			return baseOffset + i, false
		}
	}
	return baseOffset + width, true
}

// bfExtractRegMSB0 reads width bits from value starting at offset, counting
// bit 0 as the register's most-significant bit and wrapping past bit 31.
func bfExtractRegMSB0(value, offset, width uint32) uint32 {
	var out uint32
	for i := uint32(0); i < width; i++ {
		pos := (offset + i) & 31
		out = (out << 1) | ((value >> (31 - pos)) & 1)
	}
	return out
}

func bfInsertRegMSB0(orig, offset, width, field uint32) uint32 {
	v := orig
	for i := uint32(0); i < width; i++ {
		pos := (offset + i) & 31
		bit := (field >> (width - 1 - i)) & 1
		shift := 31 - pos
		v = (v &^ (1 << shift)) | (bit << shift)
	}
	return v
}

// bfExtractMemWindow reads five consecutive bytes starting at startAddr into
// a 40-bit window and pulls out the width-bit field beginning bitInByte bits
// into the first byte. Five bytes cover every field a 32-bit width can span
// regardless of its starting bit.
func bfExtractMemWindow(cpu *cpu, startAddr, bitInByte, width uint32) (field uint32, window uint64, bytesLen int, err error) {
	bytesLen = int((bitInByte + width + 7) / 8)
	for i := uint32(0); i < 5; i++ {
		b, rerr := cpu.read(Byte, startAddr+i)
		if rerr != nil {
			return 0, 0, 0, rerr
		}
		window = (window << 8) | uint64(b&0xff)
	}
	shift := 40 - (bitInByte + width)
	field = uint32(window>>shift) & bfMask(width)
	return field, window, bytesLen, nil
}

func bfStoreMemWindow(cpu *cpu, startAddr uint32, window uint64, bytesLen int) error {
	for i := 0; i < bytesLen; i++ {
		shift := uint((4 - i) * 8)
		b := uint32((window >> shift) & 0xff)
		if err := cpu.write(Byte, startAddr+uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

func (cpu *cpu) setBitFieldFlags(field, width uint32) {
	var flags uint16
	if width > 0 && field&(1<<(width-1)) != 0 {
		flags |= srNegative
	}
	if field == 0 {
		flags |= srZero
	}
	cpu.regs.SR = (cpu.regs.SR &^ (srNegative | srZero | srOverflow | srCarry)) | flags
}

func bftst(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	_, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.setBitFieldFlags(field, spec.width)
	return nil
}

func bfextu(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	_, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.regs.D[spec.reg] = int32(field)
	cpu.setBitFieldFlags(field, spec.width)
	return nil
}

func bfexts(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	_, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.regs.D[spec.reg] = int32(bfSignExtend(field, spec.width))
	cpu.setBitFieldFlags(field, spec.width)
	return nil
}

func bfchg(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	operand, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.setBitFieldFlags(field, spec.width)
	return operand.store(spec.width, field^bfMask(spec.width))
}

func bfclr(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	operand, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.setBitFieldFlags(field, spec.width)
	return operand.store(spec.width, 0)
}

func bfset(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	operand, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	cpu.setBitFieldFlags(field, spec.width)
	return operand.store(spec.width, bfMask(spec.width))
}

func bfins(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	operand, _, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	srcField := uint32(cpu.regs.D[spec.reg]) & bfMask(spec.width)
	cpu.setBitFieldFlags(srcField, spec.width)
	return operand.store(spec.width, srcField)
}

func bfffo(cpu *cpu) error {
	ext, err := cpu.popPc(Word)
	if err != nil {
		return err
	}
	spec := decodeBitFieldSpec(cpu, uint16(ext))
	_, field, err := resolveBitFieldOperand(cpu, spec)
	if err != nil {
		return err
	}
	pos, _ := bfFindFirstOne(field, spec.width, spec.offset)
	cpu.regs.D[spec.reg] = int32(pos)
	cpu.setBitFieldFlags(field, spec.width)
	return nil
}
