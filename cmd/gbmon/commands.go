package main

import (
	"errors"
	"strconv"

	"github.com/beevik/cmd"
)

func (h *Host) cmdHelp(c cmd.Selection) error {
	h.println("commands: step, continue, frame, regs, mem, break, reset, quit")
	return nil
}

func (h *Host) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		if n, err := strconv.Atoi(c.Args[0]); err == nil {
			count = n
		}
	}
	for i := 0; i < count; i++ {
		h.emu.CPU.Step()
		if h.breakpoints[h.emu.CPU.PC] {
			h.printf("breakpoint hit at %04X\n", h.emu.CPU.PC)
			break
		}
	}
	h.displayPC()
	return nil
}

func (h *Host) cmdContinue(c cmd.Selection) error {
	for {
		h.emu.CPU.Step()
		if h.breakpoints[h.emu.CPU.PC] {
			h.printf("breakpoint hit at %04X\n", h.emu.CPU.PC)
			break
		}
	}
	h.displayPC()
	return nil
}

func (h *Host) cmdFrame(c cmd.Selection) error {
	h.emu.RunFrame()
	h.displayPC()
	return nil
}

func (h *Host) cmdRegs(c cmd.Selection) error {
	r := h.emu.CPU
	h.printf("A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X PC=%04X\n",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC)
	return nil
}

func (h *Host) cmdMem(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.println("usage: mem <addr> [length]")
		return nil
	}
	addr, err := parseAddr(c.Args[0])
	if err != nil {
		h.printf("bad address: %v\n", err)
		return nil
	}
	length := 16
	if len(c.Args) > 1 {
		if n, err := strconv.Atoi(c.Args[1]); err == nil {
			length = n
		}
	}
	for i := 0; i < length; i += 16 {
		h.printf("%04X:", addr+uint16(i))
		for j := 0; j < 16 && i+j < length; j++ {
			h.printf(" %02X", h.emu.Bus.Read(addr+uint16(i+j)))
		}
		h.println()
	}
	return nil
}

func (h *Host) cmdBreak(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.println("usage: break <addr>")
		return nil
	}
	addr, err := parseAddr(c.Args[0])
	if err != nil {
		h.printf("bad address: %v\n", err)
		return nil
	}
	h.breakpoints[addr] = true
	h.printf("breakpoint set at %04X\n", addr)
	return nil
}

func (h *Host) cmdReset(c cmd.Selection) error {
	h.emu.Reset()
	h.displayPC()
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting")
}
