package audition

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player owns the audio device. Only one Player may exist per process,
// since oto allows a single context.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	voice  atomic.Pointer[Voice] // Read by the audio callback without locking.
	mutex  sync.Mutex            // Only for setup/control operations
}

// NewPlayer opens the default output device at sampleRate.
func NewPlayer(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &Player{ctx: ctx}, nil
}

// Read feeds the device from the current voice and reports EOF once it ends.
func (p *Player) Read(b []byte) (int, error) {
	v := p.voice.Load()
	if v == nil {
		return 0, io.EOF
	}
	return v.Read(b)
}

// Play plays v and blocks until it ends or ctx is done.
func (p *Player) Play(ctx context.Context, v *Voice) error {
	p.mutex.Lock()
	if p.player != nil {
		p.player.Close()
	}
	p.voice.Store(v)
	p.player = p.ctx.NewPlayer(p)
	p.player.Play()
	pl := p.player
	p.mutex.Unlock()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return pl.Err()
}

// Stop silences the current voice.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.voice.Store(nil)
	if p.player != nil {
		p.player.Pause()
	}
}

// Close releases the device player.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.voice.Store(nil)
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
