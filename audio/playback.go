package audio

import (
	"errors"
	"sync"
	"time"
)

type State string

const (
	Idle    State = "idle"
	Playing State = "playing"
	Paused  State = "paused"
)

var ErrNothingLoaded = errors.New("no audio loaded")

// Status is a snapshot of a Playback.
type Status struct {
	State    State         `json:"state"`
	Position time.Duration `json:"position"`
	Duration time.Duration `json:"duration"`
}

// Playback tracks play/pause/resume/stop of one buffer against a clock. There is no
// seeking: playing always starts from the beginning and reaching the end returns the
// controller to Idle.
type Playback struct {
	mu       sync.Mutex
	now      func() time.Time
	buffer   *Buffer
	state    State
	started  time.Time
	progress time.Duration
}

func NewPlayback(now func() time.Time) *Playback {
	if now == nil {
		now = time.Now
	}
	return &Playback{now: now, state: Idle}
}

// Load replaces the buffer and stops whatever was playing.
func (p *Playback) Load(buf *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = buf
	p.state = Idle
	p.progress = 0
}

func (p *Playback) Buffer() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

func (p *Playback) Play() (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffer == nil {
		return p.statusLocked(), ErrNothingLoaded
	}
	p.state = Playing
	p.started = p.now()
	p.progress = 0
	return p.statusLocked(), nil
}

func (p *Playback) Pause() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked()
	if p.state == Playing {
		p.progress += p.now().Sub(p.started)
		p.state = Paused
	}
	return p.statusLocked()
}

func (p *Playback) Resume() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Paused {
		p.state = Playing
		p.started = p.now()
	}
	return p.statusLocked()
}

func (p *Playback) Stop() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Idle
	p.progress = 0
	return p.statusLocked()
}

// Toggle is the single narrator button: pause while playing, resume while paused,
// otherwise start from the beginning.
func (p *Playback) Toggle() (Status, error) {
	p.mu.Lock()
	p.advanceLocked()
	state := p.state
	p.mu.Unlock()

	switch state {
	case Playing:
		return p.Pause(), nil
	case Paused:
		return p.Resume(), nil
	default:
		return p.Play()
	}
}

func (p *Playback) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked()
	return p.statusLocked()
}

// advanceLocked moves a finished playback back to Idle.
func (p *Playback) advanceLocked() {
	if p.state != Playing {
		return
	}
	if p.progress+p.now().Sub(p.started) >= p.buffer.Duration() {
		p.state = Idle
		p.progress = 0
	}
}

func (p *Playback) statusLocked() Status {
	s := Status{State: p.state, Position: p.progress, Duration: p.buffer.Duration()}
	if p.state == Playing {
		s.Position += p.now().Sub(p.started)
	}
	return s
}
