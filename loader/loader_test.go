package loader

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

var quiet = log.New(io.Discard, "", 0)

// emptyModule builds a header-only module with the given title.
func emptyModule(title string) []byte {
	b := []byte(xm.Magic)
	name := make([]byte, 20)
	copy(name, title)
	b = append(b, name...)
	b = append(b, 0x1a)
	b = append(b, make([]byte, 20)...)
	b = binary.LittleEndian.AppendUint16(b, xm.Version)
	b = binary.LittleEndian.AppendUint32(b, 20+256)
	for _, v := range []uint16{0, 0, 1, 0, 0, 0, 6, 125} {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return append(b, make([]byte, 256)...)
}

func TestSlotPublishesDecodedSong(t *testing.T) {
	s := NewSlot(quiet)
	if s.Current() != nil {
		t.Fatal("new slot is not empty")
	}
	song, err := s.Load(emptyModule("first"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Current() != song || song.Title != "first" {
		t.Fatalf("Current = %v, want the loaded song", s.Current())
	}
}

func TestSlotClearsOnFailure(t *testing.T) {
	s := NewSlot(quiet)
	if _, err := s.Load(emptyModule("first")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	data := emptyModule("second")
	_, err := s.Load(data[:100])
	if !errors.Is(err, xm.ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
	if s.Current() != nil {
		t.Fatalf("Current = %q after a failed load, want nil", s.Current().Title)
	}
}

func TestSlotLoadContextCancelled(t *testing.T) {
	s := NewSlot(quiet)
	if _, err := s.Load(emptyModule("kept")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.LoadContext(ctx, emptyModule("new")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if cur := s.Current(); cur == nil || cur.Title != "kept" {
		t.Fatalf("Current = %v, want the song from before the refused load", cur)
	}
}

func TestSlotConcurrentReaders(t *testing.T) {
	s := NewSlot(quiet)
	good := emptyModule("song")
	bad := good[:70]

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if song := s.Current(); song != nil && (song.Title != "song" || song.Channels != 1) {
					t.Errorf("reader saw a partial song: %+v", song)
					return
				}
			}
		}()
	}
	for i := range 50 {
		data := good
		if i%3 == 0 {
			data = bad
		}
		s.Load(data)
	}
	close(stop)
	wg.Wait()
}

func TestSlotWarnings(t *testing.T) {
	data := emptyModule("warn")
	// One order entry pointing at a pattern that does not exist.
	binary.LittleEndian.PutUint16(data[64:], 1)
	data[80] = 3

	s := NewSlot(quiet)
	if _, err := s.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w := s.Warnings(); len(w) != 1 {
		t.Fatalf("warnings = %v, want 1", w)
	}
}
