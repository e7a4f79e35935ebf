package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-sampler/midi"
	"go-sampler/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer gomidi.CloseDriver()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		match := ""
		if len(os.Args) > 2 {
			match = os.Args[2]
		}
		kit := sequencer.DefaultKit
		if len(os.Args) > 3 {
			kit = os.Args[3]
		}
		monitor(match, kit)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List all MIDI input ports")
	fmt.Println("  monitor [port] [kit]  - Print decoded input and the kit slot each note hits")
	fmt.Println("  poll                  - Poll for device changes")
	fmt.Println("")
	fmt.Printf("Kits: %s\n", strings.Join(sequencer.KitNames(), ", "))
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []string, 1)
	go func() { ch <- midi.InPorts() }()

	select {
	case ports := <-ch:
		if len(ports) == 0 {
			fmt.Println("  none")
		}
		for i, p := range ports {
			fmt.Printf("  %d: %s\n", i, p)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// printer stands in for the engine and reports what the router asks of it.
type printer struct {
	playing bool
	ticks   int
}

func (p *printer) Audition(drum int, gain float32) {
	fmt.Printf("  -> slot %d gain %.2f\n", drum, gain)
}

func (p *printer) Tick() {
	p.ticks++
	fmt.Printf("  -> step %d\n", p.ticks)
}

func (p *printer) Play() {
	p.playing = true
	fmt.Println("  -> play")
}

func (p *printer) Continue() {
	p.playing = true
	fmt.Println("  -> continue")
}

func (p *printer) Stop() {
	p.playing = false
	fmt.Println("  -> stop")
}

func (p *printer) Playing() bool { return p.playing }

func monitor(match, kitName string) {
	// Route every kit slot to itself so the printer shows the slot.
	slots := make([]int, sequencer.NumKitSlots)
	for i := range slots {
		slots[i] = i
	}
	router := midi.NewRouter(&printer{}, sequencer.GetKit(kitName), slots, 4)
	router.SetClockSync(true)

	watcher := midi.NewInputWatcher(match, router.Handle)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go watcher.Run(ctx)

	fmt.Printf("Waiting for an input matching %q (kit %s). Ctrl+C to exit.\n", match, kitName)
	clocks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-watcher.Events():
			if !ok {
				return
			}
			if e.Type == midi.PortConnected {
				fmt.Printf("[%s] connected %s\n", time.Now().Format("15:04:05"), e.Name)
			} else {
				fmt.Printf("[%s] disconnected %s\n", time.Now().Format("15:04:05"), e.Name)
			}
		case e := <-router.Monitor():
			switch e.Type {
			case midi.NoteOn:
				fmt.Printf("note-on ch:%d note:%d vel:%d\n", e.Channel+1, e.Note, e.Velocity)
				if _, ok := router.DrumForNote(e.Note); !ok {
					fmt.Println("  -> not in kit")
				}
			case midi.Clock:
				// One line per quarter note is plenty.
				clocks++
				if clocks%midi.PulsesPerQuarter == 0 {
					fmt.Printf("clock x%d\n", clocks)
				}
			default:
				fmt.Println(e.Type)
			}
		}
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	last := ""
	for {
		names := midi.InPorts()
		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			last = current
		}
		time.Sleep(2 * time.Second)
	}
}
