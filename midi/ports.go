package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-sampler/debug"
)

// PortEvent is emitted when the watched input connects or disconnects
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Listener receives raw input messages.
type Listener func(msg gomidi.Message, timestampms int32)

// InputWatcher keeps one MIDI input open, reconnecting when it is
// unplugged and plugged back in.
type InputWatcher struct {
	match    string
	listener Listener

	mu       sync.Mutex
	port     string
	stopFunc func()

	events   chan PortEvent
	pollRate time.Duration
	timeout  time.Duration

	listPorts func() []string
	open      func(name string, l Listener) (func(), error)
}

// NewInputWatcher watches for an input whose name contains match (case
// insensitive). An empty match takes the first input found.
func NewInputWatcher(match string, l Listener) *InputWatcher {
	return &InputWatcher{
		match:     strings.ToLower(match),
		listener:  l,
		events:    make(chan PortEvent, 16),
		pollRate:  time.Second,
		timeout:   3 * time.Second,
		listPorts: InPorts,
		open:      openInput,
	}
}

// InPorts lists the names of the system's MIDI inputs.
func InPorts() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

func openInput(name string, l Listener) (func(), error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, errors.Wrapf(err, "find input %q", name)
	}
	// Timing messages are filtered by the driver unless asked for.
	stop, err := gomidi.ListenTo(in, l, gomidi.UseTimeCode(), gomidi.HandleError(func(err error) {
		debug.Log("midi", "Input %s: %v", name, err)
	}))
	if err != nil {
		return nil, errors.Wrapf(err, "open input %q", name)
	}
	return stop, nil
}

// Events returns a channel of connect/disconnect events
func (w *InputWatcher) Events() <-chan PortEvent {
	return w.events
}

// Connected returns the open port's name, or "".
func (w *InputWatcher) Connected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.port
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *InputWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-ctx.Done():
			w.close()
			close(w.events)
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *InputWatcher) scan() {
	// Port enumeration can hang on some systems
	ch := make(chan []string, 1)
	go func() { ch <- w.listPorts() }()

	var ports []string
	select {
	case ports = <-ch:
	case <-time.After(w.timeout):
		debug.Log("midi", "Port scan timed out")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.port != "" {
		for _, p := range ports {
			if p == w.port {
				return
			}
		}
		w.closeLocked()
		return
	}

	for _, p := range ports {
		if !strings.Contains(strings.ToLower(p), w.match) {
			continue
		}
		stop, err := w.open(p, w.listener)
		if err != nil {
			debug.Log("midi", "%v", err)
			continue
		}
		w.port, w.stopFunc = p, stop
		w.emit(PortEvent{Type: PortConnected, Name: p})
		debug.Log("midi", "Connected input %s", p)
		return
	}
}

func (w *InputWatcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.port != "" {
		w.closeLocked()
	}
}

func (w *InputWatcher) closeLocked() {
	if w.stopFunc != nil {
		w.stopFunc()
	}
	name := w.port
	w.port, w.stopFunc = "", nil
	w.emit(PortEvent{Type: PortDisconnected, Name: name})
	debug.Log("midi", "Disconnected input %s", name)
}

func (w *InputWatcher) emit(e PortEvent) {
	select {
	case w.events <- e:
	default:
	}
}
