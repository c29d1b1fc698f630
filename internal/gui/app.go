package gui

import (
	"fmt"
	"sort"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/forcelab/internal/audio"
	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/kinetic"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColGrid    = rl.NewColor(30, 30, 30, 255)    // Barely visible grid
)

// binding resolves a control key that must not shadow a key the scenario
// listens to.
type binding struct {
	code  int32
	label string
}

type App struct {
	World *hostsim.World
	Keys  *hostsim.ManualKeyboard

	Camera       rl.Camera3D
	CamPosTarget rl.Vector3
	CamTgtTarget rl.Vector3

	Font  rl.Font
	Audio *audio.Processor

	Step        int
	TotalSteps  int
	Frame       kinetic.Frame
	Accum       float64
	Running     bool
	Done        bool
	ShowVectors bool
	Quit        bool

	Telemetry    []float64
	MaxTelemetry int

	// scenario key names bridged into the simulation each step
	watched []string

	ctrlPause   binding
	ctrlReset   binding
	ctrlVectors binding
	ctrlQuit    binding
}

func initWindow(title string) {
	rl.InitWindow(1280, 720, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// keyCode maps a scenario key name to its Raylib key. Unknown names map
// to 0, which never reads as down.
func keyCode(name string) int32 {
	switch name {
	case "space":
		return rl.KeySpace
	case "enter":
		return rl.KeyEnter
	case "tab":
		return rl.KeyTab
	case "up":
		return rl.KeyUp
	case "down":
		return rl.KeyDown
	case "left":
		return rl.KeyLeft
	case "right":
		return rl.KeyRight
	case "shift":
		return rl.KeyLeftShift
	case "f2":
		return rl.KeyF2
	case "f3":
		return rl.KeyF3
	case "f10":
		return rl.KeyF10
	}
	if len(name) == 1 {
		c := name[0]
		if c >= 'a' && c <= 'z' {
			return rl.KeyA + int32(c-'a')
		}
		if c >= '0' && c <= '9' {
			return rl.KeyZero + int32(c-'0')
		}
	}
	return 0
}

// pickBinding prefers primary unless the scenario already listens to it,
// so holding a rule's trigger key never pauses the run by accident.
func pickBinding(bound map[string]bool, primary, fallback string) binding {
	name := primary
	if bound[primary] {
		name = fallback
	}
	return binding{code: keyCode(name), label: strings.ToUpper(name)}
}

// NewApp wires a manual keyboard into the world and positions the camera
// above and behind the scene. Sound is best-effort: a failed stream open
// leaves the processor inactive and the run silent.
func NewApp(w *hostsim.World, sound bool) *App {
	keys := hostsim.NewManualKeyboard()
	w.SetKeyboard(keys)

	sc := w.Scenario()
	bound := make(map[string]bool)
	var watched []string
	note := func(name string) {
		if name != "" && !bound[name] {
			bound[name] = true
			watched = append(watched, name)
		}
	}
	for _, r := range sc.Rules {
		note(r.Key)
	}
	for _, kw := range sc.Keys {
		note(kw.Key)
	}
	sort.Strings(watched)

	app := &App{
		World: w,
		Keys:  keys,
		Camera: rl.NewCamera3D(
			rl.NewVector3(12, 9, 16),
			rl.NewVector3(0, 2, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		CamPosTarget: rl.NewVector3(12, 9, 16),
		CamTgtTarget: rl.NewVector3(0, 2, 0),
		Font:         loadFont(),
		TotalSteps:   int(w.Duration() / w.Dt()),
		Running:      true,
		ShowVectors:  true,
		MaxTelemetry: 200,
		Telemetry:    make([]float64, 0, 200),
		watched:      watched,
		ctrlPause:    pickBinding(bound, "space", "enter"),
		ctrlReset:    pickBinding(bound, "r", "f2"),
		ctrlVectors:  pickBinding(bound, "v", "f3"),
		ctrlQuit:     pickBinding(bound, "q", "f10"),
	}

	if sound {
		proc := audio.NewProcessor()
		proc.Start()
		app.Audio = proc
	}

	return app
}

// Run opens the window, plays the scenario interactively, and blocks
// until the window closes.
func Run(w *hostsim.World, sound bool) {
	initWindow("forcelab :: " + w.Scenario().Name)
	defer rl.CloseWindow()

	app := NewApp(w, sound)
	app.RunLoop()

	if app.Audio != nil {
		app.Audio.Stop()
	}
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.Quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	dtFrame := float64(rl.GetFrameTime())

	if rl.IsKeyPressed(a.ctrlPause.code) && !a.Done {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(a.ctrlReset.code) {
		a.reset()
	}
	if rl.IsKeyPressed(a.ctrlVectors.code) {
		a.ShowVectors = !a.ShowVectors
	}
	if rl.IsKeyPressed(a.ctrlQuit.code) || rl.IsKeyPressed(rl.KeyEscape) {
		a.Quit = true
	}

	if a.Running && !a.Done {
		a.Accum += dtFrame
		dt := a.World.Dt()
		// Catch up at most a few steps so a stalled frame can't spiral
		for steps := 0; a.Accum >= dt && steps < 8; steps++ {
			a.feedKeys()
			a.Frame = a.World.Step(a.Step)
			a.Step++
			a.Accum -= dt
			if a.Step >= a.TotalSteps {
				a.Done = true
				a.Running = false
				break
			}
		}
		a.observeFrame()
	}

	a.updateCamera(dtFrame)
}

// feedKeys mirrors the real keyboard into the simulation for every key
// the scenario listens to.
func (a *App) feedKeys() {
	held := make(map[string]bool, len(a.watched))
	for _, name := range a.watched {
		held[name] = rl.IsKeyDown(keyCode(name))
	}
	a.Keys.Set(held)
}

func (a *App) observeFrame() {
	if len(a.Frame.Bodies) > 0 {
		a.Telemetry = append(a.Telemetry, a.Frame.Bodies[0].Speed())
		if len(a.Telemetry) > a.MaxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}

	if a.Audio != nil && a.Audio.Active {
		wind := 0.0
		for _, z := range a.Frame.Wind {
			wind += z.Force
		}
		a.Audio.SetWind(wind)
		for _, e := range a.Frame.Events {
			if e.Mode == kinetic.Impulse {
				a.Audio.Pluck(e.Magnitude)
			}
		}
	}
}

// reset rebuilds the world from its scenario and reinstalls the manual
// keyboard. The scenario validated on first assembly, so this cannot fail.
func (a *App) reset() {
	w, err := hostsim.NewWorld(a.World.Scenario())
	if err != nil {
		return
	}
	a.World = w
	a.Keys = hostsim.NewManualKeyboard()
	a.World.SetKeyboard(a.Keys)
	a.Step = 0
	a.Accum = 0
	a.Frame = kinetic.Frame{}
	a.Telemetry = a.Telemetry[:0]
	a.Done = false
	a.Running = true
}

func (a *App) updateCamera(dt float64) {
	// Input modifies the TARGET, not the camera directly
	if rl.IsKeyDown(rl.KeyUp) {
		a.CamPosTarget.Y += 0.3
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.CamPosTarget.Y -= 0.3
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.CamPosTarget.X -= 0.3
		a.CamTgtTarget.X -= 0.3
	}
	if rl.IsKeyDown(rl.KeyRight) {
		a.CamPosTarget.X += 0.3
		a.CamTgtTarget.X += 0.3
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.CamPosTarget.X -= delta.X * 0.05
		a.CamPosTarget.Y += delta.Y * 0.05
	}

	// Zoom along the view direction
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		zoom := float32(wheel) * 1.5
		diff := rl.Vector3Subtract(a.CamTgtTarget, a.CamPosTarget)
		dist := rl.Vector3Length(diff)
		if dist > 3.0 || zoom < 0 {
			dir := rl.Vector3Normalize(diff)
			a.CamPosTarget = rl.Vector3Add(a.CamPosTarget, rl.Vector3Scale(dir, zoom))
		}
	}

	// Apply Inertia (Lerp)
	lerp := float32(5.0 * dt)
	if lerp > 1.0 {
		lerp = 1.0
	}
	a.Camera.Position = rl.Vector3Lerp(a.Camera.Position, a.CamPosTarget, lerp)
	a.Camera.Target = rl.Vector3Lerp(a.Camera.Target, a.CamTgtTarget, lerp)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.World.GroundPlane() {
		a.CustomGrid(40, 1.0)
	}
	a.drawScene()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) CustomGrid(slices int, spacing float32) {
	halfSize := float32(slices) * spacing / 2
	rl.BeginMode3D(a.Camera)
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, 0, -halfSize), rl.NewVector3(pos, 0, halfSize), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-halfSize, 0, pos), rl.NewVector3(halfSize, 0, pos), ColGrid)
	}
	rl.EndMode3D()
}

func (a *App) DrawHUD() {
	sc := a.World.Scenario()
	a.drawText("forcelab", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", sc.Name), 160, 34, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	switch {
	case a.Done:
		status = "FINISHED"
		col = ColText
	case !a.Running:
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	t := float64(a.Step) * a.World.Dt()
	a.drawText(fmt.Sprintf("t %6.2fs / %.0fs", t, a.World.Duration()), 30, 60, 16, ColText)

	// Wind readout
	y := 90
	for _, z := range a.Frame.Wind {
		a.drawText(fmt.Sprintf("%-10s %6.2fN", z.Zone, z.Force), 30, y, 14, ColAccent)
		y += 18
	}

	// Rule lamps
	for _, ev := range a.World.Evaluators() {
		grounded := ""
		if ev.Grounded() {
			grounded = " [G]"
		}
		for i := 0; i < ev.Len(); i++ {
			lamp, lampCol := "○", ColTextDim
			if ev.Status(i).Fired {
				lamp, lampCol = "●", ColSelect
			}
			a.drawText(fmt.Sprintf("%s %s/%s%s", lamp, ev.OwnerID(), ev.Rule(i).Name, grounded), 30, y, 14, lampCol)
			y += 18
		}
	}

	a.DrawTelemetry()

	help := fmt.Sprintf("[%s] PAUSE  [%s] RESET  [%s] VECTORS  [ESC/%s] QUIT",
		a.ctrlPause.label, a.ctrlReset.label, a.ctrlVectors.label, a.ctrlQuit.label)
	a.drawText(help, 640, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)

	if a.Audio != nil && a.Audio.Active {
		a.drawText("SND [ON]", 160, 680, 14, ColTextDim)
	} else {
		a.drawText("SND [OFF]", 160, 680, 14, ColTextDim)
	}
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("v: %.2f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
