package viz

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vectorize/internal/driver"
)

const DefaultFrameInterval = time.Second / 30

// Gate blocks the driver goroutine while the view is paused.
type Gate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	stopped bool
}

func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *Gate) Pause() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

func (g *Gate) Resume() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Toggle flips the pause state and reports whether the gate is now paused.
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	g.paused = !g.paused
	paused := g.paused
	g.mu.Unlock()
	g.cond.Broadcast()
	return paused
}

// Stop releases any waiter for good. Wait returns false afterwards.
func (g *Gate) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
	g.cond.Broadcast()
}

func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is paused. It reports false once the gate has
// been stopped.
func (g *Gate) Wait() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.paused && !g.stopped {
		g.cond.Wait()
	}
	return !g.stopped
}

// FrameMsg carries a copy of the candidate to the view.
type FrameMsg struct {
	Frame    driver.Frame
	Accepted int
}

// DoneMsg is sent once when the run ends. Frame is the final candidate.
type DoneMsg struct {
	Frame    driver.Frame
	Accepted int
	Result   *driver.Result
	Err      error
}

// Session runs a driver on its own goroutine and hands frames to the view.
// Frames are dropped when the view falls behind; the driver never waits on
// rendering.
type Session struct {
	drv      *driver.Driver
	cfg      driver.Config
	gate     *Gate
	interval time.Duration

	frames   chan FrameMsg
	done     chan DoneMsg
	finished chan struct{}
	final    DoneMsg
	cancel   context.CancelFunc
}

func NewSession(d *driver.Driver, cfg driver.Config) *Session {
	return &Session{
		drv:      d,
		cfg:      cfg,
		gate:     NewGate(),
		interval: DefaultFrameInterval,
		frames:   make(chan FrameMsg, 1),
		done:     make(chan DoneMsg, 1),
		finished: make(chan struct{}),
	}
}

// SetInterval sets the minimum wall time between published frames.
func (s *Session) SetInterval(d time.Duration) { s.interval = d }

func (s *Session) Gate() *Gate            { return s.gate }
func (s *Session) Config() driver.Config  { return s.cfg }
func (s *Session) Driver() *driver.Driver { return s.drv }

// Start launches the run. It must be called once.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go func() {
		var (
			last     time.Time
			tick     driver.Tick
			accepted int
		)
		res, err := s.drv.RunWithCallback(ctx, s.cfg, func(t driver.Tick) bool {
			tick = t
			if t.Step.Accepted {
				accepted++
			}
			if t.Generation == 0 || time.Since(last) >= s.interval {
				last = time.Now()
				select {
				case s.frames <- FrameMsg{Frame: s.drv.Snapshot(t), Accepted: accepted}:
				default:
				}
			}
			return s.gate.Wait()
		})
		s.final = DoneMsg{Frame: s.drv.Snapshot(tick), Accepted: accepted, Result: res, Err: err}
		close(s.finished)
		s.done <- s.final
	}()
}

// Stop ends the run. The final DoneMsg is still delivered.
func (s *Session) Stop() {
	s.gate.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until the run ends and returns its final message, whether
// or not a view has already received it.
func (s *Session) Wait() DoneMsg {
	<-s.finished
	return s.final
}

// Listen returns a command that delivers the next frame or the final
// DoneMsg.
func (s *Session) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-s.frames:
			return f
		case d := <-s.done:
			return d
		}
	}
}
