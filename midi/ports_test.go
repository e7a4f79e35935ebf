package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakePorts struct {
	mu      sync.Mutex
	names   []string
	opened  []string
	stopped []string
	fail    map[string]bool
}

func (f *fakePorts) set(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = names
}

func (f *fakePorts) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func (f *fakePorts) open(name string, l Listener) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[name] {
		return nil, errors.New("busy")
	}
	f.opened = append(f.opened, name)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped = append(f.stopped, name)
	}, nil
}

func newTestWatcher(match string, ports *fakePorts) *InputWatcher {
	w := NewInputWatcher(match, func(gomidi.Message, int32) {})
	w.listPorts = ports.list
	w.open = ports.open
	w.pollRate = 5 * time.Millisecond
	w.timeout = 50 * time.Millisecond
	return w
}

func TestWatcherConnectsMatchingPort(t *testing.T) {
	ports := &fakePorts{}
	ports.set("IAC Bus 1", "Elektron Digitakt MIDI")
	w := newTestWatcher("digitakt", ports)

	w.scan()
	assert.Equal(t, "Elektron Digitakt MIDI", w.Connected())
	assert.Equal(t, []string{"Elektron Digitakt MIDI"}, ports.opened)
	assert.Equal(t, PortEvent{Type: PortConnected, Name: "Elektron Digitakt MIDI"}, <-w.Events())

	// Still present: nothing changes.
	w.scan()
	assert.Len(t, ports.opened, 1)
	assert.Empty(t, w.Events())
}

func TestWatcherReconnects(t *testing.T) {
	ports := &fakePorts{}
	ports.set("Drum Pad")
	w := newTestWatcher("", ports)

	w.scan()
	<-w.Events()

	ports.set()
	w.scan()
	assert.Equal(t, "", w.Connected())
	assert.Equal(t, []string{"Drum Pad"}, ports.stopped)
	assert.Equal(t, PortEvent{Type: PortDisconnected, Name: "Drum Pad"}, <-w.Events())

	ports.set("Drum Pad")
	w.scan()
	assert.Equal(t, "Drum Pad", w.Connected())
	assert.Equal(t, []string{"Drum Pad", "Drum Pad"}, ports.opened)
}

func TestWatcherSkipsPortsThatFailToOpen(t *testing.T) {
	ports := &fakePorts{fail: map[string]bool{"Pad A": true}}
	ports.set("Pad A", "Pad B")
	w := newTestWatcher("pad", ports)

	w.scan()
	assert.Equal(t, "Pad B", w.Connected())
}

func TestWatcherScanTimesOut(t *testing.T) {
	ports := &fakePorts{}
	block := make(chan struct{})
	defer close(block)
	w := newTestWatcher("", ports)
	w.listPorts = func() []string {
		<-block
		return []string{"late"}
	}

	start := time.Now()
	w.scan()
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "", w.Connected())
}

func TestWatcherRunClosesOnCancel(t *testing.T) {
	ports := &fakePorts{}
	ports.set("Pad")
	w := newTestWatcher("", ports)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Equal(t, PortConnected, (<-w.Events()).Type)
	cancel()
	<-done

	assert.Equal(t, PortDisconnected, (<-w.Events()).Type)
	_, open := <-w.Events()
	assert.False(t, open)
	assert.Equal(t, []string{"Pad"}, ports.stopped)
}
