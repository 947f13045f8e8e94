// Package main implements gbmon, an interactive command-line debugger for
// the emulator core: step instructions, inspect registers and memory, set
// breakpoints, and run until one is hit.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/lesleyrs/Peanut-GB/internal/gameboy"
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
)

var cmds *cmd.Tree

func init() {
	cmds = cmd.NewTree("gbmon", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Brief:    "Display help",
			Data:     (*Host).cmdHelp,
		},
		{
			Name:        "step",
			Shortcut:    "s",
			Brief:       "Step one or more instructions",
			HelpText:    "step [count]",
			Data:        (*Host).cmdStep,
		},
		{
			Name:     "continue",
			Shortcut: "c",
			Brief:    "Run until a breakpoint is hit",
			Data:     (*Host).cmdContinue,
		},
		{
			Name:     "frame",
			Shortcut: "f",
			Brief:    "Run one full frame",
			Data:     (*Host).cmdFrame,
		},
		{
			Name:     "regs",
			Shortcut: "r",
			Brief:    "Display CPU registers",
			Data:     (*Host).cmdRegs,
		},
		{
			Name:     "mem",
			Shortcut: "m",
			Brief:    "Dump memory",
			HelpText: "mem <addr> [length]",
			Data:     (*Host).cmdMem,
		},
		{
			Name:     "break",
			Shortcut: "b",
			Brief:    "Set a breakpoint",
			HelpText: "break <addr>",
			Data:     (*Host).cmdBreak,
		},
		{
			Name:     "reset",
			Brief:    "Reset the emulator",
			Data:     (*Host).cmdReset,
		},
		{
			Name:     "quit",
			Shortcut: "q",
			Brief:    "Quit gbmon",
			Data:     (*Host).cmdQuit,
		},
	})
}

// Host wraps a running Emulator with the bookkeeping a REPL needs:
// breakpoints and the input/output streams RunCommands was given.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	emu         *gameboy.Emulator
	breakpoints map[uint16]bool
	lastCmd     *cmd.Selection
}

// NewHost creates a debugger host around an already-initialized emulator.
func NewHost(emu *gameboy.Emulator) *Host {
	return &Host{emu: emu, breakpoints: make(map[uint16]bool)}
}

// RunCommands reads commands from r, writes results to w, and loops until
// EOF or a command (quit) returns an error.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	h.displayPC()
	for {
		h.prompt()
		line, err := h.getLine()
		if err != nil {
			break
		}

		var sel cmd.Selection
		if line != "" {
			sel, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("command not found")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("command is ambiguous")
				continue
			case err != nil:
				h.printf("error: %v\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			sel = *h.lastCmd
		}

		if sel.Command == nil {
			continue
		}
		h.lastCmd = &sel

		handler := sel.Command.Data.(func(*Host, cmd.Selection) error)
		if err := handler(h, sel); err != nil {
			break
		}
	}
	h.flush()
}

func (h *Host) write(p []byte) (int, error)      { return h.output.Write(p) }
func (h *Host) print(args ...interface{})        { fmt.Fprint(h.output, args...) }
func (h *Host) printf(format string, a ...interface{}) {
	fmt.Fprintf(h.output, format, a...)
	h.flush()
}
func (h *Host) println(args ...interface{}) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}
func (h *Host) flush() { h.output.Flush() }

func (h *Host) prompt() {
	if h.interactive {
		h.printf("gbmon> ")
	}
}

func (h *Host) getLine() (string, error) {
	if !h.input.Scan() {
		if err := h.input.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(h.input.Text()), nil
}

func (h *Host) displayPC() {
	c := h.emu.CPU
	h.printf("PC=%04X opcode=%02X\n", c.PC, h.emu.Bus.Read(c.PC))
}

// parseAddr parses s as hexadecimal, with or without a 0x or $ prefix.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gbmon <rom-file>")
		os.Exit(1)
	}

	rom, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hooks := hardware.NewMemHooks(rom)
	emu, err := gameboy.Init(hooks)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	NewHost(emu).RunCommands(os.Stdin, os.Stdout, true)
}
