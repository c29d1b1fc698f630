package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/kinetic"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600

	// world units to scene units for the braille view
	sceneScale = 0.12
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).Width(46)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives the live view: it owns the world, steps it on ticks, and
// renders the scene plus rule and wind activity.
type Model struct {
	world  *hostsim.World
	canvas *Canvas
	camera *Camera

	width, height int
	step          int
	totalSteps    int
	frame         kinetic.Frame
	running       bool
	done          bool
	showHelp      bool

	bodyOrder []string
	speedHist map[string][]float64
	zoneOrder []string
	windHist  map[string][]float64
}

// NewLive builds the live view around a freshly assembled world.
func NewLive(w *hostsim.World) Model {
	cam := NewCamera()
	cam.Position = Vec3{0, 0, 6}
	cam.RotX = -0.35
	cam.RotY = 0.5

	m := Model{
		world:      w,
		canvas:     NewCanvas(width, height),
		camera:     cam,
		width:      width,
		height:     height,
		totalSteps: int(w.Duration() / w.Dt()),
		running:    true,
		speedHist:  make(map[string][]float64),
		windHist:   make(map[string][]float64),
	}
	for _, b := range w.Bodies() {
		m.bodyOrder = append(m.bodyOrder, b.ID())
	}
	for _, z := range w.Zones() {
		m.zoneOrder = append(m.zoneOrder, z.Name())
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the world.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		m.draw()
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	m.frame = m.world.Step(m.step)
	m.step++
	if m.step >= m.totalSteps {
		m.done = true
		m.running = false
	}

	for _, b := range m.frame.Bodies {
		hist := append(m.speedHist[b.ID], b.Speed())
		if len(hist) > historyCapacity {
			hist = hist[1:]
		}
		m.speedHist[b.ID] = hist
	}
	for _, z := range m.frame.Wind {
		hist := append(m.windHist[z.Zone], z.Force)
		if len(hist) > historyCapacity {
			hist = hist[1:]
		}
		m.windHist[z.Zone] = hist
	}
}

// reset rebuilds the world from its scenario. The scenario validated when
// the world was first assembled, so the rebuild cannot fail.
func (m *Model) reset() {
	w, err := hostsim.NewWorld(m.world.Scenario())
	if err != nil {
		return
	}
	m.world = w
	m.step = 0
	m.done = false
	m.running = true
	m.frame = kinetic.Frame{}
	m.speedHist = make(map[string][]float64)
	m.windHist = make(map[string][]float64)
}

func sv(v mgl64.Vec3) Vec3 {
	return Vec3{v.X(), v.Y(), v.Z()}.Scale(sceneScale)
}

// draw rebuilds the braille scene: ground grid, bodies, zones, volumes,
// obstacles, markers, and fired-rule arrows.
func (m *Model) draw() {
	m.canvas.Clear()
	wf := NewWireframe()

	if m.world.GroundPlane() {
		wf.AddGroundGrid(10*sceneScale, 2*sceneScale, '·')
	}

	for _, b := range m.world.Bodies() {
		orient := b.Orientation()
		rotate := func(c Vec3) Vec3 {
			r := orient.Rotate(mgl64.Vec3{c.X, c.Y, c.Z})
			return Vec3{r.X(), r.Y(), r.Z()}
		}
		wf.AddBox(sv(b.Position()), sv(b.Size().Mul(0.5)), rotate, '█')
	}

	sc := m.world.Scenario()
	for i, z := range m.world.Zones() {
		cfg := sc.Zones[i]
		half := sv(mgl64.Vec3{cfg.Size[0] / 2, cfg.Size[1] / 2, cfg.Size[2] / 2})
		center := sv(z.Position())
		yaw := cfg.YawDeg
		rotate := rotateYaw(yaw)
		wf.AddBox(center, half, rotate, '░')

		// arrow length tracks the current force
		reach := cfg.Size[2] / 2
		if cfg.BaseForce > 0 {
			reach *= z.CurrentForce() / cfg.BaseForce
		}
		tip := z.Position().Add(z.Forward().Mul(reach))
		wf.AddArrow(center, sv(tip), '▶')
	}

	zoneCount := len(m.world.Zones())
	for _, vol := range m.world.Volumes()[zoneCount:] {
		wf.AddBox(sv(vol.Center()), sv(vol.Size().Mul(0.5)), nil, '·')
	}
	for _, o := range m.world.Obstacles() {
		wf.AddBox(sv(o.Center), sv(o.Size.Mul(0.5)), nil, '▓')
	}
	for _, mc := range sc.Markers {
		if t := m.world.Marker(mc.ID); t != nil {
			wf.AddPoint(sv(t.Position()), '●')
		}
	}

	for _, e := range m.frame.Events {
		dir := Vec3{e.Direction.X(), e.Direction.Y(), e.Direction.Z()}
		if dir.Length() == 0 {
			continue
		}
		from := sv(e.Origin)
		wf.AddArrow(from, from.Add(dir.Normalize().Scale(sceneScale*1.5)), '→')
	}

	Render3D(m.canvas, wf, m.camera)
}

func rotateYaw(deg float64) func(Vec3) Vec3 {
	if deg == 0 {
		return nil
	}
	q := mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
	return func(c Vec3) Vec3 {
		r := q.Rotate(mgl64.Vec3{c.X, c.Y, c.Z})
		return Vec3{r.X(), r.Y(), r.Z()}
	}
}

// View renders the TUI.
func (m Model) View() string {
	theme := CurrentTheme
	header := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	label := lipgloss.NewStyle().Foreground(theme.Muted).Width(12)
	value := lipgloss.NewStyle().Foreground(theme.Text)
	firedStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	idleStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.world.Scenario().Name)) + "\n")

	status := "RUNNING"
	switch {
	case m.done:
		status = "FINISHED"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	t := float64(m.step) * m.world.Dt()
	s.WriteString(label.Render("Time") + value.Render(fmt.Sprintf("%.2fs / %.0fs", t, m.world.Duration())) + "\n")
	progress := 0.0
	if m.totalSteps > 0 {
		progress = float64(m.step) / float64(m.totalSteps)
	}
	s.WriteString(ProgressBar(progress, 24) + "\n\n")

	if len(m.zoneOrder) > 0 {
		s.WriteString("WIND\n")
		for _, name := range m.zoneOrder {
			hist := m.windHist[name]
			force := 0.0
			if len(hist) > 0 {
				force = hist[len(hist)-1]
			}
			s.WriteString(fmt.Sprintf("%-10s %5.2fN %s\n", name, force, SparklineChart(hist, 20)))
		}
		s.WriteString("\n")
	}

	s.WriteString("RULES\n")
	anyRules := false
	for _, ev := range m.world.Evaluators() {
		anyRules = true
		grounded := " "
		if ev.Grounded() {
			grounded = "⏚"
		}
		for i := 0; i < ev.Len(); i++ {
			rule := ev.Rule(i)
			st := ev.Status(i)
			lamp := idleStyle.Render("○")
			detail := ""
			if st.Fired {
				lamp = firedStyle.Render("●")
				detail = fmt.Sprintf("  %.1fN %s", st.Magnitude, st.Mode)
			}
			s.WriteString(fmt.Sprintf("%s %-12s %s %s%s\n", lamp, rule.Name, ev.OwnerID(), grounded, detail))
		}
	}
	if !anyRules {
		s.WriteString(idleStyle.Render("  (none)") + "\n")
	}

	if hist := m.speedHist[m.firstBody()]; len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.Caption("speed "+m.firstBody()))
		s.WriteString("\n" + chart + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme XYZ:Rotate +-:Zoom ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset the scenario       ║
║  Q        - Quit                     ║
║  T        - Cycle themes             ║
║  X/Y/Z    - Rotate camera            ║
║  +/-      - Zoom                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) firstBody() string {
	if len(m.bodyOrder) == 0 {
		return ""
	}
	return m.bodyOrder[0]
}
