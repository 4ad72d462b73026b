package memory

import (
	"fmt"
	"strings"
)

// Header field offsets, as laid out in the first 0x150 bytes of the ROM.
const (
	entryPointAddress     = 0x100
	titleAddress          = 0x134
	cgbFlagAddress        = 0x143
	sgbFlagAddress        = 0x146
	cartTypeAddress       = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E

	minHeaderSize = 0x150
)

// MBCKind discriminates the memory-bank-controller variant selected by the
// cartridge-type header byte.
type MBCKind int

const (
	KindNoMBC MBCKind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
)

func (k MBCKind) String() string {
	switch k {
	case KindNoMBC:
		return "NoMBC"
	case KindMBC1:
		return "MBC1"
	case KindMBC2:
		return "MBC2"
	case KindMBC3:
		return "MBC3"
	case KindMBC5:
		return "MBC5"
	default:
		return "unknown"
	}
}

// HeaderError is the only failure mode surfaced at construction time.
type HeaderError struct {
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("cartridge header error: %s", e.Reason)
}

// UnimplementedMbcError is a distinct HeaderError variant for a
// recognized-but-unsupported cartridge-type byte, so callers can surface a
// more helpful message than a generic header failure.
type UnimplementedMbcError struct {
	CartType byte
}

func (e *UnimplementedMbcError) Error() string {
	return fmt.Sprintf("cartridge header error: unimplemented MBC for cart type 0x%02X", e.CartType)
}

// CartInfo is the pure, immutable result of parsing a ROM header. It never
// changes after construction: re-parsing the same bytes always yields an
// equal CartInfo.
type CartInfo struct {
	Title          string
	Kind           MBCKind
	HasBattery     bool
	HasRTC         bool
	HasRumble      bool
	ROMSize        int
	RAMSize        int
	CGBSupported   bool
	SGBSupported   bool
	HeaderChecksum byte
	GlobalChecksum uint16
}

// ParseHeader parses CartInfo from the first 0x150+ bytes of a ROM image.
// It is a pure function of those bytes: it performs no I/O and never
// mutates the input.
func ParseHeader(rom []byte) (CartInfo, error) {
	if len(rom) < minHeaderSize {
		return CartInfo{}, &HeaderError{Reason: fmt.Sprintf("rom too small: %d bytes, need at least %d", len(rom), minHeaderSize)}
	}

	kind, hasBattery, hasRTC, hasRumble, err := decodeCartType(rom[cartTypeAddress])
	if err != nil {
		return CartInfo{}, err
	}

	romSize, err := decodeROMSize(rom[romSizeAddress])
	if err != nil {
		return CartInfo{}, err
	}

	ramSize, err := decodeRAMSize(rom[ramSizeAddress])
	if err != nil {
		return CartInfo{}, err
	}

	info := CartInfo{
		Title:          cleanTitle(rom[titleAddress : titleAddress+16]),
		Kind:           kind,
		HasBattery:     hasBattery,
		HasRTC:         hasRTC,
		HasRumble:      hasRumble,
		ROMSize:        romSize,
		RAMSize:        ramSize,
		CGBSupported:   rom[cgbFlagAddress]&0x80 != 0,
		SGBSupported:   rom[sgbFlagAddress] == 0x03,
		HeaderChecksum: rom[headerChecksumAddress],
		GlobalChecksum: uint16(rom[globalChecksumAddress])<<8 | uint16(rom[globalChecksumAddress+1]),
	}

	return info, nil
}

// decodeCartType maps the 0x147 header byte to an MBC discriminant plus the
// battery/RTC/rumble accessory flags it implies.
func decodeCartType(b byte) (kind MBCKind, hasBattery, hasRTC, hasRumble bool, err error) {
	switch b {
	case 0x00:
		return KindNoMBC, false, false, false, nil
	case 0x01, 0x02:
		return KindMBC1, false, false, false, nil
	case 0x03:
		return KindMBC1, true, false, false, nil
	case 0x05:
		return KindMBC2, false, false, false, nil
	case 0x06:
		return KindMBC2, true, false, false, nil
	case 0x0F:
		return KindMBC3, true, true, false, nil
	case 0x10:
		return KindMBC3, true, true, false, nil
	case 0x11, 0x12:
		return KindMBC3, false, false, false, nil
	case 0x13:
		return KindMBC3, true, false, false, nil
	case 0x19, 0x1A:
		return KindMBC5, false, false, false, nil
	case 0x1B:
		return KindMBC5, true, false, false, nil
	case 0x1C, 0x1D:
		return KindMBC5, false, false, true, nil
	case 0x1E:
		return KindMBC5, true, false, true, nil
	default:
		return 0, false, false, false, &UnimplementedMbcError{CartType: b}
	}
}

// decodeROMSize maps the 0x148 header byte to a ROM size in bytes: the
// regular codes follow 32 KiB * 2^n, plus three irregular aliases.
func decodeROMSize(b byte) (int, error) {
	switch b {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return 32 * 1024 << b, nil
	case 0x52:
		return int(1.1 * 1024 * 1024), nil
	case 0x53:
		return int(1.2 * 1024 * 1024), nil
	case 0x54:
		return int(1.5 * 1024 * 1024), nil
	default:
		return 0, &HeaderError{Reason: fmt.Sprintf("unknown ROM size code 0x%02X", b)}
	}
}

// decodeRAMSize maps the 0x149 header byte to a RAM size in bytes.
func decodeRAMSize(b byte) (int, error) {
	switch b {
	case 0x00:
		return 0, nil
	case 0x01:
		return 2 * 1024, nil
	case 0x02:
		return 8 * 1024, nil
	case 0x03:
		return 32 * 1024, nil
	case 0x04:
		return 128 * 1024, nil
	case 0x05:
		return 64 * 1024, nil
	default:
		return 0, &HeaderError{Reason: fmt.Sprintf("unknown RAM size code 0x%02X", b)}
	}
}

// cleanTitle sanitizes the 16-byte title field: embedded NULs become
// spaces, non-printable bytes become '?', and the result is trimmed.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		switch {
		case b == 0:
			runes = append(runes, ' ')
		case b >= 0x20 && b < 0x7F:
			runes = append(runes, rune(b))
		default:
			runes = append(runes, '?')
		}
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
