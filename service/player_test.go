package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
)

// newSilentPlayer 不打开扬声器，把交给扬声器的 streamer 送到 started
func newSilentPlayer(started chan<- beep.Streamer, cleared chan<- struct{}) *BeepPlayer {
	p := NewBeepPlayer()
	p.initOutput = func(beep.SampleRate, int) error { return nil }
	p.output = func(s ...beep.Streamer) { started <- s[0] }
	p.clear = func() { close(cleared) }
	return p
}

func drain(s beep.Streamer) {
	buf := make([][2]float64, 512)
	for {
		if _, ok := s.Stream(buf); !ok {
			return
		}
	}
}

func TestBeepPlayerReturnsOnceStarted(t *testing.T) {
	started := make(chan beep.Streamer, 1)
	p := newSilentPlayer(started, make(chan struct{}))
	res := NewObjectURLRegistry("http://localhost").NewResource(wavBytes(16))

	if err := p.Play(context.Background(), res); err != nil {
		t.Fatalf("Play: %v", err)
	}
	var s beep.Streamer
	select {
	case s = <-started:
	default:
		t.Fatal("Play returned before handing audio to the speaker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v before playback finished, want deadline exceeded", err)
	}

	drain(s)
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait after playback: %v", err)
	}
}

func TestBeepPlayerStopsOnCancel(t *testing.T) {
	started := make(chan beep.Streamer, 1)
	cleared := make(chan struct{})
	p := newSilentPlayer(started, cleared)
	res := NewObjectURLRegistry("http://localhost").NewResource(wavBytes(16))

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Play(ctx, res); err != nil {
		t.Fatalf("Play: %v", err)
	}
	cancel()

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("speaker was not cleared after cancel")
	}
}

func TestBeepPlayerReleasedResource(t *testing.T) {
	p := newSilentPlayer(make(chan beep.Streamer, 1), make(chan struct{}))
	res := NewObjectURLRegistry("http://localhost").NewResource(wavBytes(16))
	res.Release()

	if err := p.Play(context.Background(), res); !errors.Is(err, ErrResourceReleased) {
		t.Errorf("Play = %v, want ErrResourceReleased", err)
	}
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait without playback = %v", err)
	}
}
