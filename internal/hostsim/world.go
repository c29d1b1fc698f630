package hostsim

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/forcelab/internal/effector"
	"github.com/san-kum/forcelab/internal/kinetic"
	"github.com/san-kum/forcelab/internal/noise"
	"github.com/san-kum/forcelab/internal/scene"
	"github.com/san-kum/forcelab/internal/wind"
)

// attachedTransform tracks a point fixed in a body's local frame.
type attachedTransform struct {
	body   *RigidBody
	offset mgl64.Vec3
}

func (a attachedTransform) Position() mgl64.Vec3 {
	return a.body.Position().Add(a.body.Orientation().Rotate(a.offset))
}

func (a attachedTransform) Orientation() mgl64.Quat {
	return a.body.Orientation()
}

// Result summarizes a completed run.
type Result struct {
	Scenario   string
	StepsTaken int
	Elapsed    time.Duration
	Frames     []kinetic.Frame
	Final      []kinetic.BodyState
	Metrics    map[string]float64
}

// World owns the simulation loop and every host capability: bodies, trigger
// volumes, ray queries, and the keyboard. Components hang off it through
// the kinetic interfaces and never see each other.
type World struct {
	scenario *scene.Scenario
	dt       float64
	duration float64
	gravity  mgl64.Vec3
	ground   bool
	logger   zerolog.Logger

	bodies    []*RigidBody
	bodyIndex map[string]*RigidBody
	volumes   []*BoxVolume
	zones     []*wind.Zone
	evals     []*effector.Evaluator
	markers   map[string]kinetic.Transform
	obstacles []Obstacle
	keyboard  kinetic.Keyboard
	scripted  *ScriptedKeyboard

	observers []kinetic.Observer
	metrics   []kinetic.Metric

	// current step context, read by volume subscription closures
	step int
	t    float64
	// events accumulated by zone stays during volume dispatch
	pending []kinetic.ForceEvent
}

func yawQuat(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
}

func vec3(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

// NewWorld assembles a world from a validated scenario.
func NewWorld(sc *scene.Scenario) (*World, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	w := &World{
		scenario:  sc,
		dt:        sc.World.Dt,
		duration:  sc.World.Duration,
		gravity:   mgl64.Vec3{0, sc.World.Gravity, 0},
		ground:    sc.World.Ground,
		logger:    zerolog.Nop(),
		bodyIndex: make(map[string]*RigidBody),
		markers:   make(map[string]kinetic.Transform),
	}

	for _, bc := range sc.Bodies {
		b := NewRigidBody(bc.ID, bc.Mass, vec3(bc.Size), vec3(bc.Position))
		b.SetVelocity(vec3(bc.Velocity))
		if bc.YawDeg != 0 {
			b.SetOrientation(yawQuat(bc.YawDeg))
		}
		w.bodies = append(w.bodies, b)
		w.bodyIndex[bc.ID] = b
	}

	for _, mc := range sc.Markers {
		if mc.Attach != "" {
			w.markers[mc.ID] = attachedTransform{body: w.bodyIndex[mc.Attach], offset: vec3(mc.Position)}
		} else {
			w.markers[mc.ID] = kinetic.Pose{Pos: vec3(mc.Position), Rot: mgl64.QuatIdent()}
		}
	}

	for _, oc := range sc.Obstacles {
		w.obstacles = append(w.obstacles, Obstacle{ID: oc.ID, Center: vec3(oc.Position), Size: vec3(oc.Size)})
	}

	for i, zc := range sc.Zones {
		var sampler noise.Sampler
		if zc.Variation {
			seed := sc.World.Seed + int64(i)
			if zc.Octaves > 1 {
				persistence := zc.Persistence
				if persistence == 0 {
					persistence = 0.5
				}
				sampler = noise.NewOctaves(seed, zc.Octaves, persistence)
			} else {
				sampler = noise.NewSmooth(seed)
			}
		}
		cfg := wind.Config{
			BaseForce:          zc.BaseForce,
			UseVariation:       zc.Variation,
			VariationFrequency: zc.Frequency,
			MinForce:           zc.MinForce,
		}
		pose := kinetic.Pose{Pos: vec3(zc.Position), Rot: yawQuat(zc.YawDeg)}
		zone := wind.NewZone(zc.ID, cfg, pose, sampler)
		w.zones = append(w.zones, zone)

		vol := NewBoxVolume(zc.ID, vec3(zc.Position), vec3(zc.Size))
		vol.SubscribeStay(func(bodyID string) {
			body := w.bodyIndex[bodyID]
			if ev, ok := zone.HandleBodyStay(bodyID, body, w.step, w.t); ok {
				w.pending = append(w.pending, ev)
			}
		})
		w.volumes = append(w.volumes, vol)
	}

	for _, vc := range sc.Volumes {
		w.volumes = append(w.volumes, NewBoxVolume(vc.ID, vec3(vc.Position), vec3(vc.Size)))
	}

	kb := NewScriptedKeyboard()
	for _, k := range sc.Keys {
		kb.Hold(k.Key, k.From, k.To)
	}
	w.scripted = kb
	w.keyboard = kb

	w.buildEvaluators(sc)

	return w, nil
}

// buildEvaluators groups rules per owner body, one evaluator each, and
// subscribes every evaluator to the trigger volumes its rules name.
func (w *World) buildEvaluators(sc *scene.Scenario) {
	owners := make([]string, 0, len(sc.Bodies))
	grouped := make(map[string][]effector.Rule)
	for _, rc := range sc.Rules {
		kind := kinetic.Directional
		if rc.Kind == "torque" {
			kind = kinetic.Torque
		}
		rule := effector.Rule{
			Name:             rc.Name,
			Kind:             kind,
			Strength:         rc.Strength,
			TriggerKey:       rc.Key,
			TriggerObject:    rc.Object,
			Continuous:       rc.Continuous,
			RequiresGrounded: rc.Grounded,
			SpeedCap:         rc.SpeedCap,
			Direction:        vec3(rc.Direction),
			RelativeToOwner:  rc.Relative,
			Origin:           rc.Origin,
		}
		if _, seen := grouped[rc.Owner]; !seen {
			owners = append(owners, rc.Owner)
		}
		grouped[rc.Owner] = append(grouped[rc.Owner], rule)
	}
	for _, owner := range owners {
		body := w.bodyIndex[owner]
		ev := effector.New(grouped[owner], effector.Binding{
			OwnerID:  owner,
			Owner:    body,
			Collider: body,
			Caster:   w,
			Keys:     w,
			Markers:  w.resolveMarker,
		})
		w.evals = append(w.evals, ev)
		w.subscribeEvaluator(ev, owner, grouped[owner])
	}
}

func (w *World) subscribeEvaluator(ev *effector.Evaluator, owner string, rules []effector.Rule) {
	watched := make(map[string]bool)
	for _, r := range rules {
		if r.TriggerObject != "" {
			watched[r.TriggerObject] = true
		}
	}
	for _, vol := range w.volumes {
		if !watched[vol.ID()] {
			continue
		}
		id := vol.ID()
		vol.SubscribeEnter(func(bodyID string) {
			if bodyID == owner {
				ev.HandleTriggerEnter(id)
			}
		})
		vol.SubscribeStay(func(bodyID string) {
			if bodyID == owner {
				ev.HandleTriggerStay(id)
			}
		})
	}
}

func (w *World) resolveMarker(id string) kinetic.Transform {
	if t, ok := w.markers[id]; ok {
		return t
	}
	return nil
}

// RayHit satisfies kinetic.Caster: the ground plane plus static obstacles.
// Bodies are not ray targets, so a probe never hits its own collider.
func (w *World) RayHit(origin, dir mgl64.Vec3, maxDist float64) bool {
	if w.ground && rayHitsGround(origin, dir, maxDist) {
		return true
	}
	for _, o := range w.obstacles {
		if rayHitsBox(origin, dir, maxDist, o.Center, o.half()) {
			return true
		}
	}
	return false
}

// SetKeyboard substitutes the scripted timeline with live input.
// Evaluators read key state through the world, so swaps take effect on the
// next step.
func (w *World) SetKeyboard(kb kinetic.Keyboard) {
	w.keyboard = kb
	w.scripted = nil
}

// KeyHeld satisfies kinetic.Keyboard by forwarding to the active source.
func (w *World) KeyHeld(key string) bool {
	return w.keyboard != nil && w.keyboard.KeyHeld(key)
}

// KeyPressed satisfies kinetic.Keyboard by forwarding to the active source.
func (w *World) KeyPressed(key string) bool {
	return w.keyboard != nil && w.keyboard.KeyPressed(key)
}

func (w *World) SetLogger(l zerolog.Logger) { w.logger = l }

func (w *World) AddObserver(o kinetic.Observer) { w.observers = append(w.observers, o) }
func (w *World) AddMetric(m kinetic.Metric)     { w.metrics = append(w.metrics, m) }

func (w *World) Dt() float64                      { return w.dt }
func (w *World) Duration() float64                { return w.duration }
func (w *World) Scenario() *scene.Scenario        { return w.scenario }
func (w *World) Bodies() []*RigidBody             { return w.bodies }
func (w *World) Zones() []*wind.Zone              { return w.zones }
func (w *World) Evaluators() []*effector.Evaluator { return w.evals }
func (w *World) Volumes() []*BoxVolume            { return w.volumes }
func (w *World) Obstacles() []Obstacle            { return w.obstacles }
func (w *World) GroundPlane() bool                { return w.ground }

// Marker returns the transform behind a marker ID, nil when unknown.
func (w *World) Marker(id string) kinetic.Transform { return w.resolveMarker(id) }

// Step advances the world by one fixed step and returns the published
// frame. The order is: keyboard, wind advance, volume dispatch (zone stays
// and evaluator trigger notations), evaluator passes, integration.
func (w *World) Step(step int) kinetic.Frame {
	w.step = step
	w.t = float64(step) * w.dt
	w.pending = nil

	if w.scripted != nil {
		w.scripted.Advance(w.t)
	}

	for _, z := range w.zones {
		z.Advance(w.t)
	}
	for _, vol := range w.volumes {
		vol.Dispatch(w.bodies)
	}

	events := w.pending
	for _, ev := range w.evals {
		events = append(events, ev.Step(step, w.t)...)
	}

	for _, b := range w.bodies {
		b.Integrate(w.dt, w.gravity, w.ground)
	}

	frame := kinetic.Frame{
		Step:   step,
		Time:   w.t,
		Events: events,
		Bodies: make([]kinetic.BodyState, 0, len(w.bodies)),
		Wind:   make([]kinetic.ZoneSample, 0, len(w.zones)),
	}
	for _, b := range w.bodies {
		frame.Bodies = append(frame.Bodies, b.State())
	}
	for _, z := range w.zones {
		frame.Wind = append(frame.Wind, kinetic.ZoneSample{
			Zone:   z.Name(),
			Force:  z.CurrentForce(),
			Sample: z.LastSample(),
		})
	}

	for _, m := range w.metrics {
		m.Observe(frame)
	}
	for _, o := range w.observers {
		o.OnFrame(frame)
	}
	return frame
}

// Run steps the world until the scenario duration elapses or ctx is
// cancelled. The partial result is returned alongside the context error.
func (w *World) Run(ctx context.Context) (*Result, error) {
	return w.RunWithCallback(ctx, nil)
}

// RunWithCallback additionally hands every frame to fn; returning false
// stops the run early without error.
func (w *World) RunWithCallback(ctx context.Context, fn func(kinetic.Frame) bool) (*Result, error) {
	steps := int(w.duration / w.dt)
	result := &Result{
		Scenario: w.scenario.Name,
		Frames:   make([]kinetic.Frame, 0, steps),
		Metrics:  make(map[string]float64),
	}

	for _, m := range w.metrics {
		m.Reset()
	}

	w.logger.Debug().Str("scenario", w.scenario.Name).Int("steps", steps).Msg("run started")
	start := time.Now()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			w.finish(result, start)
			return result, ctx.Err()
		default:
		}

		frame := w.Step(i)
		result.Frames = append(result.Frames, frame)
		result.StepsTaken++

		if fn != nil && !fn(frame) {
			break
		}
	}

	w.finish(result, start)
	return result, nil
}

func (w *World) finish(result *Result, start time.Time) {
	result.Elapsed = time.Since(start)
	for _, b := range w.bodies {
		result.Final = append(result.Final, b.State())
	}
	for _, m := range w.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	w.logger.Debug().Int("steps", result.StepsTaken).Dur("elapsed", result.Elapsed).Msg("run finished")
}
