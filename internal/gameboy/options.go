package gameboy

import (
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
	"github.com/sirupsen/logrus"
)

type config struct {
	boot     hardware.BootROMReader
	reporter hardware.ErrorReporter
	drawer   hardware.LineDrawer
	serial   hardware.SerialDevice
	audio    hardware.AudioHooks
	log      *logrus.Logger
}

// Option configures an Emulator at construction time.
type Option func(*config)

// WithBootROM attaches a 256-byte boot ROM overlay. Without one the core
// starts directly in the documented post-boot register and I/O state.
func WithBootROM(b hardware.BootROMReader) Option {
	return func(c *config) { c.boot = b }
}

// WithErrorReporter attaches a handler for runtime faults such as
// executing an invalid opcode. Without one, such faults panic.
func WithErrorReporter(r hardware.ErrorReporter) Option {
	return func(c *config) { c.reporter = r }
}

// WithLineDrawer attaches the host callback that receives composited
// scanlines. Without one the PPU still runs its mode state machine but
// produces no pixel output.
func WithLineDrawer(d hardware.LineDrawer) Option {
	return func(c *config) { c.drawer = d }
}

// WithSerialDevice attaches a link-cable partner. Without one, transfers
// started with the internal clock complete with the line floating high.
func WithSerialDevice(d hardware.SerialDevice) Option {
	return func(c *config) { c.serial = d }
}

// WithAudioHooks lets the host intercept APU register access instead of
// the core's default read-back-with-or-mask behaviour.
func WithAudioHooks(a hardware.AudioHooks) Option {
	return func(c *config) { c.audio = a }
}

// WithLogger overrides the default logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.log = l }
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}
