// Package cartridge parses the ROM header and implements memory bank
// controller address decoding (MBC0/1/2/3/5), leaving the actual ROM and
// cartridge RAM bytes to the host by way of hardware.Hooks.
package cartridge

import (
	"errors"
	"fmt"

	"github.com/lesleyrs/Peanut-GB/internal/hardware"
)

// header byte offsets, relative to the start of the ROM.
const (
	offMBCType     = 0x0147
	offROMSize     = 0x0148
	offRAMSize     = 0x0149
	offChecksumLo  = 0x0134
	offChecksumHi  = 0x014C
	offHeaderCksum = 0x014D
	offTitle       = 0x0134
	titleLen       = 16
)

// cartMBC maps the header's cartridge-type byte to an MBC identifier;
// -1 means the cartridge type is recognised but unsupported.
var cartMBC = [32]int8{
	0, 1, 1, 1, -1, 2, 2, -1, 0, 0, -1, 0, 0, 0, -1, 3,
	3, 3, 3, 3, -1, -1, -1, -1, -1, 5, 5, 5, 5, 5, 5, -1,
}

// cartHasRAM reports, per cartridge-type byte, whether that MBC variant
// exposes cartridge RAM at all (independent of the RAM-size header byte).
var cartHasRAM = [32]bool{
	false, false, true, true, false, true, true, false, true, true, false, false, false, false, false, false,
	true, false, true, true, false, false, false, false, false, false, true, true, false, false, false, false,
}

// romBankCount maps the ROM-size header byte to the number of 16KiB banks.
var romBankCount = [9]uint16{2, 4, 8, 16, 32, 64, 128, 256, 512}

// ramBankCount maps the RAM-size header byte to the number of 8KiB banks.
// MBC2 is a special case: it always has 512 4-bit nibbles of RAM regardless
// of this byte, which callers must ignore for that MBC.
var ramBankCount = [6]uint8{0, 1, 1, 4, 16, 8}

// ErrUnsupportedCartridge is returned when the header's cartridge-type byte
// names an MBC this core does not implement.
var ErrUnsupportedCartridge = errors.New("cartridge: unsupported MBC type")

// ErrInvalidChecksum is returned when the header checksum does not match
// the byte stored at 0x014D.
var ErrInvalidChecksum = errors.New("cartridge: invalid header checksum")

// Header holds the parsed, validated contents of a ROM's cartridge header.
type Header struct {
	Title string

	MBC           int8
	ROMBankMask   uint16 // romBankCount[size byte] - 1
	HasRAM        bool
	RAMBankCount  uint8
	IsMBC3Oversized bool
}

// ParseHeader reads and validates the cartridge header via hooks, returning
// ErrUnsupportedCartridge or ErrInvalidChecksum on failure.
func ParseHeader(hooks hardware.Hooks) (*Header, error) {
	read := func(addr uint16) uint8 { return hooks.ROMRead(uint32(addr)) }

	var sum uint8
	for addr := offChecksumLo; addr <= offChecksumHi; addr++ {
		sum = sum - read(uint16(addr)) - 1
	}
	if sum != read(offHeaderCksum) {
		return nil, ErrInvalidChecksum
	}

	mbcByte := read(offMBCType)
	if int(mbcByte) >= len(cartMBC) || cartMBC[mbcByte] == -1 {
		return nil, fmt.Errorf("%w: type byte 0x%02X", ErrUnsupportedCartridge, mbcByte)
	}
	mbc := cartMBC[mbcByte]

	romSizeByte := read(offROMSize)
	if int(romSizeByte) >= len(romBankCount) {
		return nil, fmt.Errorf("%w: ROM size byte 0x%02X", ErrUnsupportedCartridge, romSizeByte)
	}
	romBanks := romBankCount[romSizeByte]

	hasRAM := cartHasRAM[mbcByte]
	ramBanks := uint8(0)
	if mbc == 2 {
		// MBC2's 512x4-bit RAM is fixed regardless of the header's RAM
		// size byte.
		ramBanks = 1
	} else {
		ramSizeByte := read(offRAMSize)
		if int(ramSizeByte) < len(ramBankCount) {
			ramBanks = ramBankCount[ramSizeByte]
		}
		if !hasRAM || ramBanks == 0 {
			hasRAM = false
			ramBanks = 0
		}
	}

	oversized := false
	if mbc == 3 {
		oversized = romBanks > 128 || ramBanks > 4
	}

	title := make([]byte, 0, titleLen)
	for i := 0; i < titleLen; i++ {
		b := read(uint16(offTitle + i))
		if b == 0 {
			break
		}
		title = append(title, b)
	}

	return &Header{
		Title:           string(title),
		MBC:             mbc,
		ROMBankMask:     romBanks - 1,
		HasRAM:          hasRAM,
		RAMBankCount:    ramBanks,
		IsMBC3Oversized: oversized,
	}, nil
}
