package hostsim

// ScriptedKeyboard plays back key timelines: a key is held while the
// elapsed time sits inside one of its windows, and pressed only on the
// first step it becomes held. Satisfies kinetic.Keyboard.
type ScriptedKeyboard struct {
	windows map[string][]keyWindow
	held    map[string]bool
	prev    map[string]bool
}

type keyWindow struct {
	from, to float64
}

func NewScriptedKeyboard() *ScriptedKeyboard {
	return &ScriptedKeyboard{
		windows: make(map[string][]keyWindow),
		held:    make(map[string]bool),
		prev:    make(map[string]bool),
	}
}

// Hold schedules key to be held from t=from until t=to (exclusive).
func (k *ScriptedKeyboard) Hold(key string, from, to float64) {
	k.windows[key] = append(k.windows[key], keyWindow{from: from, to: to})
}

// Advance recomputes held state for elapsed time t. Call once per step,
// before any component reads key state.
func (k *ScriptedKeyboard) Advance(t float64) {
	k.prev = k.held
	k.held = make(map[string]bool, len(k.windows))
	for key, windows := range k.windows {
		for _, w := range windows {
			if t >= w.from && t < w.to {
				k.held[key] = true
				break
			}
		}
	}
}

func (k *ScriptedKeyboard) KeyHeld(key string) bool {
	return k.held[key]
}

func (k *ScriptedKeyboard) KeyPressed(key string) bool {
	return k.held[key] && !k.prev[key]
}

// ManualKeyboard is fed by an interactive frontend: the GUI maps its real
// key state into Set before each step. Satisfies kinetic.Keyboard.
type ManualKeyboard struct {
	held map[string]bool
	prev map[string]bool
}

func NewManualKeyboard() *ManualKeyboard {
	return &ManualKeyboard{
		held: make(map[string]bool),
		prev: make(map[string]bool),
	}
}

// Set replaces the held set for the upcoming step.
func (k *ManualKeyboard) Set(held map[string]bool) {
	k.prev = k.held
	k.held = make(map[string]bool, len(held))
	for key, down := range held {
		if down {
			k.held[key] = true
		}
	}
}

// Advance keeps the edge bookkeeping consistent when no new input arrived.
func (k *ManualKeyboard) Advance() {
	k.prev = k.held
}

func (k *ManualKeyboard) KeyHeld(key string) bool {
	return k.held[key]
}

func (k *ManualKeyboard) KeyPressed(key string) bool {
	return k.held[key] && !k.prev[key]
}
