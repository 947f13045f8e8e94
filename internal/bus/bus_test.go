package bus

import (
	"testing"

	"github.com/lesleyrs/Peanut-GB/internal/cartridge"
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
)

type fakePort struct {
	reads  map[uint16]uint8
	writes map[uint16]uint8
}

func newFakePort() *fakePort {
	return &fakePort{reads: map[uint16]uint8{}, writes: map[uint16]uint8{}}
}
func (p *fakePort) Read(addr uint16) uint8 { return p.reads[addr] }
func (p *fakePort) Write(addr uint16, v uint8) { p.writes[addr] = v }

func romOnlyCartridge(t *testing.T, tag uint8) *cartridge.Cartridge {
	rom := make([]byte, 0x8000)
	rom[0x0000] = tag
	rom[0x147] = 0x00 // ROM only
	rom[0x148] = 0x00 // 2 banks
	var sum uint8
	for addr := 0x134; addr <= 0x14C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x14D] = sum
	hooks := hardware.NewMemHooks(rom)
	header, err := cartridge.ParseHeader(hooks)
	if err != nil {
		t.Fatalf("unexpected header error: %v", err)
	}
	return cartridge.New(header, hooks)
}

func newTestBus(t *testing.T) (*Bus, *fakePort) {
	b := New(romOnlyCartridge(t, 0xAB), nil)
	video := newFakePort()
	b.Video = video
	b.Timer = newFakePort()
	b.Serial = newFakePort()
	b.Interrupts = newFakePort()
	b.Joypad = newFakePort()
	return b, video
}

func TestReadRoutesCartridgeROM(t *testing.T) {
	b, _ := newTestBus(t)
	if got := b.Read(0x0000); got != 0xAB {
		t.Fatalf("expected cartridge ROM byte, got %#02x", got)
	}
}

func TestWorkRAMRoundTrips(t *testing.T) {
	b, _ := newTestBus(t)
	b.Write(0xC123, 0x77)
	if got := b.Read(0xC123); got != 0x77 {
		t.Fatalf("expected WRAM round-trip, got %#02x", got)
	}
}

func TestEchoRAMMirrorsWorkRAM(t *testing.T) {
	b, _ := newTestBus(t)
	b.Write(0xC001, 0x55)
	if got := b.Read(0xE001); got != 0x55 {
		t.Fatalf("expected echo RAM to mirror WRAM, got %#02x", got)
	}
}

func TestUnusableRegionReadsAllOnes(t *testing.T) {
	b, _ := newTestBus(t)
	if got := b.Read(0xFEA0); got != 0xFF {
		t.Fatalf("expected unusable region to read 0xFF, got %#02x", got)
	}
}

func TestOAMDMACopiesFromSourceIntoVideoPort(t *testing.T) {
	b, video := newTestBus(t)
	for i := uint16(0); i < 160; i++ {
		b.Write(0xC000+i, uint8(i))
	}
	b.Write(0xFF46, 0xC0) // DMA source page 0xC000

	for i := uint16(0); i < 160; i++ {
		if got := video.writes[0xFE00+i]; got != uint8(i) {
			t.Fatalf("expected OAM byte %d to be %d, got %d", i, uint8(i), got)
		}
	}
}

func TestBootROMOverlayAndDisable(t *testing.T) {
	bootData := []byte{0x11, 0x22, 0x33}
	boot := &fakeBootROM{data: bootData}
	b := New(romOnlyCartridge(t, 0x99), boot)
	b.Video = newFakePort()
	b.Timer = newFakePort()
	b.Serial = newFakePort()
	b.Interrupts = newFakePort()
	b.Joypad = newFakePort()

	if got := b.Read(0x0000); got != 0x11 {
		t.Fatalf("expected boot ROM byte while mapped, got %#02x", got)
	}

	b.Write(0xFF50, 0x01)
	if got := b.Read(0x0000); got != 0x99 {
		t.Fatalf("expected cartridge ROM after boot ROM disabled, got %#02x", got)
	}
}

type fakeBootROM struct{ data []byte }

func (f *fakeBootROM) BootROMRead(addr uint16) uint8 {
	if int(addr) >= len(f.data) {
		return 0xFF
	}
	return f.data[addr]
}
