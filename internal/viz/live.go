package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 60
	height          = 24
	trailCapacity   = 4000
	historyCapacity = 600
	arrowColumns    = 9
	arrowRows       = 7
	maxSpeed        = 64
	frameRate       = time.Second / 30
)

type TickMsg time.Time

// Model advances one particle on every tick and draws its path over the
// flow.
type Model struct {
	name    string
	field   flow.Field
	params  config.Dimensionless
	order   int
	release sim.Release

	stepper *sim.Stepper
	canvas  *Canvas
	view    Viewport
	trail   []r2.Vec
	slips   []float64
	forces  []float64

	running   bool
	arrows    bool
	speed     int
	recording bool
	frames    []*image.Paletted
	GIFPath   string
	notice    string
}

// NewModel prepares a live run of rel through f.
func NewModel(name string, f flow.Field, p config.Dimensionless, order int, rel sim.Release) (Model, error) {
	m := Model{
		name:    name,
		field:   f,
		params:  p,
		order:   order,
		release: rel,
		canvas:  NewCanvas(width, height),
		running: true,
		arrows:  true,
		speed:   1,
		GIFPath: "trajectory.gif",
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.notice = err.Error()
			}
		case "t":
			NextTheme()
		case "a":
			m.arrows = !m.arrows
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "g":
			m.toggleRecording()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the stepper by speed steps, stopping at the first failure.
func (m *Model) step() {
	for i := 0; i < m.speed && m.stepper.Phase() == sim.Stepping; i++ {
		state, err := m.stepper.Advance()
		if err != nil {
			m.notice = err.Error()
			m.running = false
			return
		}
		m.record(state.Position, r2.Norm(state.Slip), r2.Norm(m.stepper.HistoryForce()))
	}
	if m.stepper.Phase() != sim.Stepping {
		m.running = false
	}
}

func (m *Model) record(pos r2.Vec, slip, force float64) {
	m.trail = appendCapped(m.trail, pos, trailCapacity)
	m.slips = appendCapped(m.slips, slip, historyCapacity)
	m.forces = appendCapped(m.forces, force, historyCapacity)
	m.view = m.view.Include(pos)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// reset restarts the particle from its release.
func (m *Model) reset() error {
	st, err := sim.NewStepper(m.field, m.params, m.order, m.release.Position, m.release.Slip)
	if err != nil {
		return err
	}
	m.stepper = st
	m.view = DefaultViewport
	m.trail = m.trail[:0]
	m.slips = m.slips[:0]
	m.forces = m.forces[:0]
	m.notice = ""
	m.running = true
	m.record(m.release.Position, r2.Norm(m.release.Slip), 0)
	return nil
}

// draw renders the flow arrows, the path and the particle onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	if m.arrows {
		m.drawArrows()
	}
	m.canvas.DrawPath(m.view, m.trail)
	if x, y, ok := m.view.Project(m.canvas, m.stepper.State().Position); ok {
		m.canvas.Blob(x, y)
	}
}

// drawArrows samples the flow on a coarse lattice at the current time and
// draws each velocity scaled so the fastest arrow spans most of a lattice
// cell. Points the flow cannot answer are skipped.
func (m *Model) drawArrows() {
	t := m.stepper.State().Time
	span := r2.Sub(m.view.Max, m.view.Min)
	cell := math.Min(span.X/arrowColumns, span.Y/arrowRows)

	type sample struct{ at, u r2.Vec }
	samples := make([]sample, 0, arrowColumns*arrowRows)
	fastest := 0.0
	for i := 0; i < arrowColumns; i++ {
		for j := 0; j < arrowRows; j++ {
			at := r2.Vec{
				X: m.view.Min.X + (float64(i)+0.5)*span.X/arrowColumns,
				Y: m.view.Min.Y + (float64(j)+0.5)*span.Y/arrowRows,
			}
			u, err := m.field.Evaluate(at.X, at.Y, t)
			if err != nil {
				continue
			}
			samples = append(samples, sample{at, u})
			fastest = math.Max(fastest, r2.Norm(u))
		}
	}
	if fastest == 0 {
		return
	}

	scale := 0.8 * cell / fastest
	for _, s := range samples {
		x0, y0, ok0 := m.view.Project(m.canvas, s.at)
		x1, y1, ok1 := m.view.Project(m.canvas, r2.Add(s.at, r2.Scale(scale, s.u)))
		if ok0 && ok1 {
			m.canvas.DrawLine(x0, y0, x1, y1)
		}
	}
}

func (m Model) status(st styles) string {
	var label string
	switch phase := m.stepper.Phase(); {
	case phase == sim.Failed:
		label = st.failed.Render("FAILED")
	case phase == sim.Terminated:
		label = st.paused.Render("DONE")
	case m.running:
		label = st.running.Render(fmt.Sprintf("RUNNING x%d", m.speed))
	default:
		label = st.paused.Render("PAUSED")
	}
	if m.recording {
		label += "  " + st.failed.Render("● REC")
	}
	return label
}

func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	m.draw()

	state := m.stepper.State()
	steps, total := m.stepper.Steps(), m.params.Steps()
	row := func(label, value string) string {
		return st.label.Render(label) + st.value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status(st) + "\n\n")
	s.WriteString(row("Time", fmt.Sprintf("%.3f", state.Time)))
	s.WriteString(row("Step", fmt.Sprintf("%d / %d", steps, total)))
	s.WriteString(st.label.Render("") + st.path.Render(ProgressBar(float64(steps)/float64(total), 20)) + "\n")
	s.WriteString(row("Position", fmt.Sprintf("(%.4f, %.4f)", state.Position.X, state.Position.Y)))
	s.WriteString(row("Slip", fmt.Sprintf("(%.4f, %.4f)", state.Slip.X, state.Slip.Y)))
	h := m.stepper.HistoryForce()
	s.WriteString(row("History", fmt.Sprintf("(%.4f, %.4f)", h.X, h.Y)))
	s.WriteString(row("R, S", fmt.Sprintf("%.3g, %.3g", m.params.R(), m.params.S())))
	s.WriteString(row("Order", fmt.Sprintf("%d", m.order)))
	s.WriteString(st.label.Render("|H|") + st.arrows.Render(Sparkline(m.forces, 24)) + "\n")

	if len(m.slips) > 1 {
		chart := asciigraph.Plot(m.slips, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("|w|"))
		s.WriteString("\n" + st.value.Render(chart) + "\n")
	}
	if m.notice != "" {
		s.WriteString("\n" + st.failed.Width(40).Render(m.notice) + "\n")
	}
	s.WriteString(st.hint.Render("SPACE pause  R reset  Q quit\nT theme  A arrows  +/- speed  G gif"))

	canvasView := st.canvas.Render(st.path.Render(m.canvas.String()))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.notice = err.Error()
	} else if len(m.frames) > 0 {
		m.notice = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.GIFPath)
	}
	m.frames = nil
}

// captureFrame rasterises the canvas, each dot as a charW/2 by charH/4
// block.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(
		image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH),
		color.Palette{color.Black, color.White},
	)

	w, h := m.canvas.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(m.GIFPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run starts the live view in the alternate screen and blocks until the
// user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
