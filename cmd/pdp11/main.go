// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/pdp11/cpu"
	"github.com/ezrec/pdp11/emulator"
	"github.com/ezrec/pdp11/translate"
)

func main() {
	var script string
	var model string
	var memory int
	var pc string
	var raw bool
	var verbose bool
	var lang string

	flag.StringVar(&script, "c", "", ".star configuration script to run")
	flag.StringVar(&model, "m", "", "Processor model (default 11/70)")
	flag.IntVar(&memory, "s", 0, "Memory size in KiB (default model limit, at most 256)")
	flag.StringVar(&pc, "pc", "", "Starting PC, as an expression")
	flag.BoolVar(&raw, "t", false, "Put the terminal in raw mode")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "locale", "", "Message locale (default host locale)")

	flag.Parse()

	if len(lang) != 0 {
		translate.SetLocale(lang)
	}

	if flag.NArg() > 1 {
		log.Fatal(translate.Message("%v: unknown arguments: %v", os.Args[0], flag.Args()[1:]))
	}

	config := emulator.Config{
		Cpu: cpu.Config{Model: emulator.DEFAULT_MODEL},
	}
	if len(model) != 0 {
		var err error
		config.Cpu.Model, err = cpu.ParseModel(model)
		if err != nil {
			log.Fatalf("%v: %v", model, err)
		}
	}
	if memory < 0 {
		log.Fatalf("%v: %v", memory, emulator.ErrMemoryConfig)
	}
	config.Memory = uint32(memory) * 1024

	var emu *emulator.Emulator
	var err error
	if len(script) != 0 {
		sc := &emulator.Script{
			Verbose: verbose,
			Config:  config,
			Output:  os.Stderr,
		}
		emu, err = sc.Exec(script, nil)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}
	} else {
		emu, err = emulator.NewEmulator(config)
		if err != nil {
			log.Fatalf("%v: %v", config.Cpu.Model, err)
		}
		emu.Verbose = verbose
	}
	defer emu.Close()

	// Load a memory image at physical zero.
	if flag.NArg() == 1 {
		image := flag.Arg(0)
		inf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		_, err = emu.Load(0, inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	if len(pc) != 0 {
		value, err := emulator.Evaluate(pc, emu.Defines())
		if err != nil {
			log.Fatalf("%v: %v", pc, err)
		}
		err = emu.DepositRegister("PC", uint16(value))
		if err != nil {
			log.Fatalf("%v: %v", pc, err)
		}
	}

	emu.Terminal.Input = os.Stdin
	emu.Terminal.Output = os.Stdout
	emu.Terminal.Strip = true

	err = run(emu, raw)
	if err != nil {
		log.Fatalf("%v: %v", config.Cpu.Model, err)
	}
}

// run the emulator until it halts, or is interrupted.
func run(emu *emulator.Emulator, raw bool) (err error) {
	if raw {
		var restore func() error
		restore, err = enterRawTerm(os.Stdin)
		if err != nil {
			return
		}
		defer restore()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	switch {
	case errors.Is(err, cpu.ErrHalt), errors.Is(err, context.Canceled):
		log.Printf("%v, %d instructions", err, emu.Ticks())
		err = nil
	}
	return
}
