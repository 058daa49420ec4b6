package viz

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"golang.org/x/image/draw"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/imaging"
)

const (
	canvasWidth     = 48
	maxCanvasHeight = 30
	historyCapacity = 600
	gifDelay        = 5
)

// Options configures the live view.
type Options struct {
	Title string
	// Dir receives snapshots and recordings.
	Dir string
	// Scale is the upscaling factor of saved snapshots.
	Scale int
}

// Model renders a running Session.
type Model struct {
	session *Session
	opts    Options
	canvas  *Canvas

	frame    driver.Frame
	accepted int
	fitness  []float64

	result *driver.Result
	err    error
	done   bool

	outline   bool
	showHelp  bool
	recording bool
	frames    []*image.Paletted
	message   string
}

func NewModel(s *Session, opts Options) Model {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	t := s.Driver().State().Target
	return Model{
		session: s,
		opts:    opts,
		canvas:  NewCanvas(canvasSize(t.Width, t.Height)),
		fitness: make([]float64, 0, historyCapacity),
	}
}

// canvasSize fits a w x h image into the preview, keeping its aspect ratio.
// One braille cell covers 2x4 dots.
func canvasSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return canvasWidth, canvasWidth / 2
	}
	rows := (canvasWidth*2*h/w + 3) / 4
	if rows > maxCanvasHeight {
		rows = maxCanvasHeight
	}
	if rows < 1 {
		rows = 1
	}
	return canvasWidth, rows
}

func (m Model) Init() tea.Cmd {
	return m.session.Listen()
}

// Result returns the final run result once the session has ended.
func (m Model) Result() (*driver.Result, error) { return m.result, m.err }

// Update handles input events and frames from the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.Stop()
			return m, tea.Quit
		case " ":
			if !m.done {
				m.session.Gate().Toggle()
			}
		case "o":
			m.outline = !m.outline
			m.draw()
		case "s":
			m.message = m.saveSnapshot()
		case "g":
			if m.recording {
				m.message = m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
				m.message = "recording"
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case FrameMsg:
		m.apply(msg.Frame, msg.Accepted)
		return m, m.session.Listen()
	case DoneMsg:
		m.apply(msg.Frame, msg.Accepted)
		m.done = true
		m.result, m.err = msg.Result, msg.Err
		if m.recording {
			m.message = m.saveGIF()
			m.recording = false
		}
	}
	return m, nil
}

func (m *Model) apply(f driver.Frame, accepted int) {
	if f.Pixels.Len() == 0 {
		return
	}
	m.frame = f
	m.accepted = accepted
	if len(m.fitness) == historyCapacity {
		copy(m.fitness, m.fitness[1:])
		m.fitness = m.fitness[:historyCapacity-1]
	}
	m.fitness = append(m.fitness, f.Fitness)
	m.draw()
	if m.recording {
		m.captureFrame()
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Dither(m.frame.Pixels)
	if m.outline {
		m.canvas.Outline(m.frame.Gene)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := NewStyles(CurrentTheme)
	tick := m.frame.Tick

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "vectorize"
	}
	s.WriteString(st.Header.Render(strings.ToUpper(title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	if len(m.fitness) > 1 {
		chart := asciigraph.Plot(m.fitness, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Fitness"))
		s.WriteString(st.Graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Generation", fmt.Sprintf("%d", tick.Generation))
	row("Fitness", fmt.Sprintf("%.6f", m.frame.Fitness))
	row("Temperature", fmt.Sprintf("%.5f", tick.Temperature))
	rate := 0.0
	if tick.Generation > 0 {
		rate = float64(m.accepted) / float64(tick.Generation+1)
	}
	row("Accepted", fmt.Sprintf("%d (%.1f%%)", m.accepted, 100*rate))
	row("Polygons", fmt.Sprintf("%d", tick.Polygons))
	row("Vertices", fmt.Sprintf("%d", tick.Vertices))
	row("Last move", tick.Step.Kind.String())
	row("Elapsed", tick.Elapsed.Truncate(100*time.Millisecond).String())

	if maxGen := m.session.Config().MaxGenerations; maxGen > 0 {
		p := float64(tick.Generation+1) / float64(maxGen)
		s.WriteString("\n" + ProgressBar(p, 30, CurrentTheme) + fmt.Sprintf(" %3.0f%%", 100*p) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + st.Label.Width(0).Render(m.message) + "\n")
	}
	s.WriteString(st.Help.Render("\nSP:Pause O:Outline S:Snapshot\nG:Record T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.canvas.String()), st.Stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume the run     ║
║  O        - Toggle polygon outlines  ║
║  S        - Save snapshot as PNG     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status(st Styles) string {
	var status string
	switch {
	case m.err != nil && m.done:
		status = st.Failed.Render("FAILED: " + m.err.Error())
	case m.done:
		reason := ""
		if m.result != nil {
			reason = " (" + string(m.result.Reason) + ")"
		}
		status = st.Done.Render("DONE" + reason)
	case m.session.Gate().Paused():
		status = st.Paused.Render("PAUSED")
	default:
		status = st.Running.Render("RUNNING")
	}
	if m.recording {
		status += "  " + st.Recording.Render("● REC")
	}
	return status
}

func (m Model) saveSnapshot() string {
	if m.frame.Pixels.Len() == 0 {
		return "nothing to save yet"
	}
	path := filepath.Join(m.opts.Dir, fmt.Sprintf("snapshot_%06d.png", m.frame.Tick.Generation))
	if err := imaging.SavePNG(path, imaging.Upscale(m.frame.Pixels.ToImage(), m.opts.Scale)); err != nil {
		return "snapshot failed: " + err.Error()
	}
	return "saved " + path
}

// captureFrame quantises the candidate to the Plan 9 palette.
func (m *Model) captureFrame() {
	src := m.frame.Pixels.ToImage()
	img := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(img, img.Bounds(), src, image.Point{})
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() string {
	if len(m.frames) == 0 {
		return "no frames recorded"
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, gifDelay)
	}
	path := filepath.Join(m.opts.Dir, "vectorize.gif")
	f, err := os.Create(path)
	if err != nil {
		return "recording failed: " + err.Error()
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return "recording failed: " + err.Error()
	}
	return fmt.Sprintf("saved %s (%d frames)", path, len(m.frames))
}

// FitnessChart plots a stored fitness history.
func FitnessChart(history []driver.Sample, width, height int) string {
	if len(history) < 2 {
		return ""
	}
	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = s.Fitness
	}
	return asciigraph.Plot(values, asciigraph.Height(height), asciigraph.Width(width), asciigraph.Caption("Fitness"))
}
