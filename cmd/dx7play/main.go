// Command dx7play is a minimal interactive host for the dx7fm engine:
// it opens an audio output stream and reads simple note/controller
// commands from stdin until EOF or a "quit" line.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	dx7fm "github.com/cbegin/dx7fm-go"
	"github.com/cbegin/dx7fm-go/internal/dxaudio"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		maxNotes   = flag.Int("max-notes", 16, "polyphony cap (0..32)")
		gain       = flag.Float64("gain", 1.0, "master gain")
		mono       = flag.Bool("mono", false, "start in monophonic mode")
		sysexPath  = flag.String("load", "", "path to a 136-byte single-voice SysEx dump to load at startup")
	)
	flag.Parse()

	engine, err := dx7fm.NewEngine(*sampleRate,
		dx7fm.WithMaxNotes(*maxNotes),
		dx7fm.WithGain(*gain),
		dx7fm.WithMonoMode(*mono),
	)
	if err != nil {
		log.Fatal(err)
	}

	if *sysexPath != "" {
		data, err := os.ReadFile(*sysexPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := engine.Sysex(data); err != nil {
			log.Fatal(err)
		}
	}

	player, err := dxaudio.NewPlayer(*sampleRate, 1, engine)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()
	defer player.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readCommands(gctx, engine)
	})

	fmt.Println("dx7play ready: on <pitch> <vel> | off <pitch> | cc <num> <value> | bend <value> | panic | quit")
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			log.Println(err)
		}
	case <-ctx.Done():
	}
}

// readCommands reads one command per line from stdin until EOF, ctx
// cancellation, or an explicit "quit" line.
func readCommands(ctx context.Context, engine *dx7fm.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "on":
			pitch, vel, err := parsePair(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			engine.NoteOn(0, pitch, vel)
		case "off":
			pitch, err := parseOne(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			engine.NoteOff(0, pitch)
		case "cc":
			num, value, err := parsePair(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			engine.ControlChange(num, value)
		case "bend":
			v, err := parseOne(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			engine.PitchBend(v)
		case "panic":
			engine.Panic()
		default:
			fmt.Printf("unrecognized command: %s\n", fields[0])
		}
	}
	return scanner.Err()
}

func parseOne(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%s: expected one argument", fields[0])
	}
	return strconv.Atoi(fields[1])
}

func parsePair(fields []string) (int, int, error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("%s: expected two arguments", fields[0])
	}
	a, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
