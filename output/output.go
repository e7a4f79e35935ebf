// Package output sends the engine's PCM stream to a sound device.
package output

import (
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/pkg/errors"

	"go-sampler/debug"
)

const (
	channelCount   = 1
	bytesPerSample = 2
)

// Sink pulls mono 16-bit PCM from a reader and plays it.
type Sink interface {
	Play()
	Pause()
	Close() error
}

// BufferSize is the device buffer in bytes for blocks of blockSize frames.
// Two blocks are queued so one can render while the other plays.
func BufferSize(blockSize int) int {
	return 2 * blockSize * channelCount * bytesPerSample
}

// Latency is the time covered by the device buffer.
func Latency(sampleRate, blockSize int) time.Duration {
	return time.Duration(2*blockSize) * time.Second / time.Duration(sampleRate)
}

// Player plays through the system audio device.
type Player struct {
	ctx    *oto.Context
	player oto.Player
}

// Open prepares the audio device for src. Only one Player may exist per
// process.
func Open(src io.Reader, sampleRate, blockSize int) (*Player, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, errors.Wrap(err, "open audio device")
	}
	<-ready

	p := ctx.NewPlayer(src)
	if b, ok := p.(interface{ SetBufferSize(int) }); ok {
		b.SetBufferSize(BufferSize(blockSize))
	}
	debug.Log("audio", "Opened device %d Hz, block %d, latency %v", sampleRate, blockSize, Latency(sampleRate, blockSize))
	return &Player{ctx: ctx, player: p}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }

// Err reports a playback failure, if any.
func (p *Player) Err() error {
	return p.player.Err()
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	return p.player.Close()
}

// Null drains a reader at real-time pace without producing sound. It keeps
// the engine running when no audio device is available.
type Null struct {
	src      io.Reader
	block    []byte
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	frames   int64
}

// NewNull returns a sink reading blockSize frames per block period.
func NewNull(src io.Reader, sampleRate, blockSize int) *Null {
	return &Null{
		src:      src,
		block:    make([]byte, blockSize*channelCount*bytesPerSample),
		interval: time.Duration(blockSize) * time.Second / time.Duration(sampleRate),
	}
}

// Play starts draining. Calling Play twice has no effect.
func (n *Null) Play() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopChan != nil {
		return
	}
	n.stopChan = make(chan struct{})
	n.done = make(chan struct{})
	go n.loop(n.stopChan, n.done)
}

// Pause stops draining and waits for the loop to exit.
func (n *Null) Pause() {
	n.mu.Lock()
	stop, done := n.stopChan, n.done
	n.stopChan, n.done = nil, nil
	n.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Close is Pause.
func (n *Null) Close() error {
	n.Pause()
	return nil
}

// Frames returns how many frames were consumed.
func (n *Null) Frames() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frames
}

func (n *Null) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			got, err := io.ReadFull(n.src, n.block)
			n.mu.Lock()
			n.frames += int64(got / (channelCount * bytesPerSample))
			n.mu.Unlock()
			if err != nil {
				debug.Log("audio", "Null sink source ended: %v", err)
				return
			}
		}
	}
}
