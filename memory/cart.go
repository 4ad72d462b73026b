package memory

// Cartridge owns the immutable ROM image, the mutable RAM image, and the
// MBC variant selected by the header. ROM is shared-read only; RAM is
// retained and exposed for persistence.
type Cartridge struct {
	Info CartInfo
	rom  []byte
	ram  []byte
	mbc  MBC
}

// NewCartridge parses rom's header and builds the matching MBC, expanding
// or allocating ram to the header's declared size if the caller didn't
// supply one of the right length.
func NewCartridge(rom []byte, ram []byte) (*Cartridge, error) {
	info, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	if len(ram) < info.RAMSize {
		expanded := make([]byte, info.RAMSize)
		copy(expanded, ram)
		ram = expanded
	}

	romCopy := make([]byte, len(rom))
	copy(romCopy, rom)

	c := &Cartridge{
		Info: info,
		rom:  romCopy,
		ram:  ram,
	}
	c.mbc = NewMBC(info, c.rom, c.ram)
	return c, nil
}

// ReadByte reads a ROM address (0x0000-0x7FFF) or a cartridge-RAM address
// (0xA000-0xBFFF).
func (c *Cartridge) ReadByte(addr uint16) byte {
	if addr < 0x8000 {
		return c.mbc.ReadROM(addr)
	}
	return c.mbc.ReadRAM(addr)
}

// WriteByte writes to the ROM address space (interpreted by the MBC as a
// bank-control write) or to cartridge RAM.
func (c *Cartridge) WriteByte(addr uint16, value byte) {
	if addr < 0x8000 {
		c.mbc.WriteROM(addr, value)
		return
	}
	c.mbc.WriteRAM(addr, value)
}

// Reset restores the MBC's bank-control registers to power-on values. The
// ROM and RAM contents, and (for MBC3) the RTC's running state, are
// cartridge-side data that survives a console-side reset untouched.
func (c *Cartridge) Reset() {
	c.mbc.Reset()
}

// RAM exposes the cartridge RAM for persistence. The caller must not resize
// the returned slice.
func (c *Cartridge) RAM() []byte {
	return c.ram
}

// ROM exposes the immutable ROM image, e.g. for hashing it into a
// save-state identity check. The caller must not modify the returned
// slice; use PatchROM for that.
func (c *Cartridge) ROM() []byte {
	return c.rom
}

// PatchROM pokes a byte directly into the underlying ROM image, bypassing
// the MBC's bank-control write semantics entirely. A normal WriteByte in
// the ROM range is intercepted by the MBC as a register write; the
// debugger needs to edit the image itself, so it goes around that.
func (c *Cartridge) PatchROM(addr uint16, value byte) {
	if int(addr) < len(c.rom) {
		c.rom[addr] = value
	}
}
