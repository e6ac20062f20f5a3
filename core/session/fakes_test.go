package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"VibeWake/model"
)

type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	url     string
	loop    bool
	playing bool
	playErr error
	ended   chan string
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{ended: make(chan string, 4)}
}

func (p *fakePlayer) record(s string) {
	p.calls = append(p.calls, s)
}

func (p *fakePlayer) Load(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("load " + url)
	p.url, p.playing = url, false
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("play")
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("pause")
	p.playing = false
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("stop")
	p.url, p.playing = "", false
	return nil
}

func (p *fakePlayer) SetLooping(loop bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(fmt.Sprintf("loop %t", loop))
	p.loop = loop
	return nil
}

func (p *fakePlayer) Ended() <-chan string { return p.ended }

func (p *fakePlayer) snapshot() (url string, loop, playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.loop, p.playing
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// gateGreeter blocks every Greet until a reply for that label is released.
type gateGreeter struct {
	mu    sync.Mutex
	gates map[string]chan string
}

func newGateGreeter() *gateGreeter {
	return &gateGreeter{gates: make(map[string]chan string)}
}

func (g *gateGreeter) gate(label string) chan string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[label]
	if !ok {
		ch = make(chan string, 1)
		g.gates[label] = ch
	}
	return ch
}

func (g *gateGreeter) Greet(ctx context.Context, label string) string {
	select {
	case text := <-g.gate(label):
		return text
	case <-ctx.Done():
		return "fallback"
	}
}

func (g *gateGreeter) release(label, text string) {
	g.gate(label) <- text
}

// instantGreeter answers immediately.
type instantGreeter string

func (g instantGreeter) Greet(ctx context.Context, label string) string { return string(g) }

var errAutoplay = errors.New("NotAllowedError: play() failed because the user didn't interact with the document first")

func testAlarm(id string, h, m int) model.Alarm {
	return model.Alarm{
		ID:      id,
		Time:    model.TimeOfDay{Hour: h, Minute: m},
		Label:   "Alarm " + id,
		Enabled: true,
		Track:   model.TrackRef{ID: "1", Title: "Morning Sunshine", URL: "https://example.com/" + id + ".mp3"},
	}
}

var testStart = time.Date(2024, 5, 6, 7, 29, 0, 0, time.UTC) // a Monday
