// Package loader hands decoded songs to a player.
package loader

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

// Slot holds the song a player is currently allowed to read. Loads are
// serialized; reads never block.
type Slot struct {
	mu     sync.Mutex // Held for the whole of a load.
	song   atomic.Pointer[xm.Song]
	logger *log.Logger

	// Warnings from the most recent successful load. Guarded by mu.
	warnings []xm.Warning
}

// NewSlot creates an empty slot. A nil logger logs to log.Default().
func NewSlot(logger *log.Logger) *Slot {
	if logger == nil {
		logger = log.Default()
	}
	return &Slot{logger: logger}
}

// Load decodes data and publishes the result. The previous song is
// withdrawn before decoding starts, so on failure the slot is empty.
func (s *Slot) Load(data []byte) (*xm.Song, error) {
	return s.LoadContext(context.Background(), data)
}

// LoadContext is Load that refuses to start once ctx is done. A decode that
// has already started runs to completion.
func (s *Slot) LoadContext(ctx context.Context, data []byte) (*xm.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load not started: %w", err)
	}

	s.song.Store(nil)
	s.warnings = nil

	res, err := xm.NewDecoder(data, s.logger).Decode()
	if err != nil {
		s.logger.Printf("load rejected: %v", err)
		return nil, err
	}
	s.warnings = res.Warnings
	s.song.Store(res.Song)
	return res.Song, nil
}

// Current returns the published song, or nil while none is ready.
func (s *Slot) Current() *xm.Song {
	return s.song.Load()
}

// Warnings returns the warnings of the last successful load.
func (s *Slot) Warnings() []xm.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]xm.Warning(nil), s.warnings...)
}
