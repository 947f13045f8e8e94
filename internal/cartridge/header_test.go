package cartridge

import (
	"testing"

	"github.com/lesleyrs/Peanut-GB/internal/hardware"
)

// buildROM constructs a minimal 32KiB ROM with a valid header checksum for
// the given cartridge-type and size bytes.
func buildROM(mbcType, romSizeByte, ramSizeByte byte, title string) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x134:0x144], title)
	rom[offMBCType] = mbcType
	rom[offROMSize] = romSizeByte
	rom[offRAMSize] = ramSizeByte

	var sum uint8
	for addr := offChecksumLo; addr <= offChecksumHi; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[offHeaderCksum] = sum
	return rom
}

func TestParseHeaderROMOnly(t *testing.T) {
	rom := buildROM(0x00, 0x00, 0x00, "TESTROM")
	h, err := ParseHeader(hardware.NewMemHooks(rom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MBC != 0 {
		t.Fatalf("expected MBC0, got %d", h.MBC)
	}
	if h.Title != "TESTROM" {
		t.Fatalf("expected title TESTROM, got %q", h.Title)
	}
	if h.ROMBankMask != 1 {
		t.Fatalf("expected a 2-bank mask of 1, got %d", h.ROMBankMask)
	}
}

func TestParseHeaderMBC3RAMBattery(t *testing.T) {
	rom := buildROM(0x13, 0x01, 0x03, "RTCGAME")
	h, err := ParseHeader(hardware.NewMemHooks(rom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MBC != 3 {
		t.Fatalf("expected MBC3, got %d", h.MBC)
	}
	if !h.HasRAM || h.RAMBankCount != 4 {
		t.Fatalf("expected 4 RAM banks, got hasRAM=%v banks=%d", h.HasRAM, h.RAMBankCount)
	}
}

func TestParseHeaderInvalidChecksum(t *testing.T) {
	rom := buildROM(0x00, 0x00, 0x00, "BAD")
	rom[offHeaderCksum] ^= 0xFF
	if _, err := ParseHeader(hardware.NewMemHooks(rom)); err != ErrInvalidChecksum {
		t.Fatalf("expected ErrInvalidChecksum, got %v", err)
	}
}

func TestParseHeaderUnsupportedMBC(t *testing.T) {
	rom := buildROM(0x04, 0x00, 0x00, "UNSUP") // 0x04 is a reserved gap value
	if _, err := ParseHeader(hardware.NewMemHooks(rom)); err == nil {
		t.Fatalf("expected an unsupported-cartridge error")
	}
}

func TestMBC2IgnoresRAMSizeByte(t *testing.T) {
	rom := buildROM(0x06, 0x00, 0x05, "MBC2GAME") // RAM size byte should be ignored
	h, err := ParseHeader(hardware.NewMemHooks(rom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.RAMBankCount != 1 {
		t.Fatalf("expected MBC2's fixed single RAM bank, got %d", h.RAMBankCount)
	}
}
