package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type endless struct{}

func (endless) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestBufferSizing(t *testing.T) {
	assert.Equal(t, 512, BufferSize(128))
	assert.Equal(t, 10*time.Millisecond, Latency(25600, 128))
}

func TestNullDrainsInBlocks(t *testing.T) {
	n := NewNull(endless{}, 8000, 80) // 10ms blocks
	n.Play()
	n.Play()
	assert.Eventually(t, func() bool { return n.Frames() >= 240 }, 2*time.Second, 5*time.Millisecond)

	assert.NoError(t, n.Close())
	frames := n.Frames()
	assert.Zero(t, frames%80)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frames, n.Frames(), "paused sink keeps reading")
}

func TestNullStopsAtEndOfSource(t *testing.T) {
	n := NewNull(bytes.NewReader(make([]byte, 300)), 8000, 80)
	n.Play()
	assert.Eventually(t, func() bool { return n.Frames() == 150 }, 2*time.Second, 5*time.Millisecond)
	n.Pause()
}
