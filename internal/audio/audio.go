// Package audio sonifies a running simulation. A low triangle-wave pad
// tracks the ambient wind force: stronger wind opens the filter and
// raises the pad level. Impulse applications trigger short plucked tones
// on a pentatonic scale. Output runs through a stereo cross-feedback
// delay for space.
//
// The processor degrades quietly: if the output stream cannot be opened
// the simulation keeps running without sound.
package audio

import (
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	maxVoices = 12
)

// Pad harmony: Gm7 add9 (G2, Bb2, D3, F3, A3).
var padFreqs = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Pluck scale: G minor pentatonic, one octave up from the pad.
var pluckFreqs = []float64{196.00, 233.08, 261.63, 293.66, 349.23}

type voice struct {
	phase float64
	freq  float64
	amp   float64
	decay float64
}

// Processor synthesizes the simulation soundtrack on the default output
// device. Wind and impulse inputs arrive from the render thread; the
// audio callback reads them under the mutex.
type Processor struct {
	stream *portaudio.Stream

	mu         sync.Mutex
	windTarget float64
	pending    []voice

	voices      []voice
	windSmooth  float64
	time        float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int

	Active bool
}

func NewProcessor() *Processor {
	// 0.6 s delay line for a large-room tail
	delayLen := int(float64(SampleRate) * 0.6)

	return &Processor{
		delayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

func (p *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}

	p.stream = stream
	p.Active = true
	return nil
}

func (p *Processor) Stop() {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
	portaudio.Terminate()
	p.Active = false
}

// SetWind reports the summed wind force acting this frame. The pad
// morphs toward it slowly so gusts swell instead of stepping.
func (p *Processor) SetWind(force float64) {
	p.mu.Lock()
	p.windTarget = force
	p.mu.Unlock()
}

// Pluck triggers a short tone for an impulse of the given magnitude.
// Magnitude picks the note and sets the level.
func (p *Processor) Pluck(magnitude float64) {
	mag := math.Abs(magnitude)
	note := pluckFreqs[int(mag)%len(pluckFreqs)]
	amp := math.Min(mag/40.0, 1.0)*0.5 + 0.1

	p.mu.Lock()
	if len(p.pending) < maxVoices {
		p.pending = append(p.pending, voice{freq: note, amp: amp, decay: 2.5})
	}
	p.mu.Unlock()
}

// Triangle wave: smooth, flute-like, no harsh buzz.
func triangle(phase float64) float64 {
	f := phase - math.Floor(phase)
	return 4.0*math.Abs(f-0.5) - 1.0
}

// One-pole low pass.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

func (p *Processor) process(out [][]float32) {
	p.mu.Lock()
	target := p.windTarget
	fresh := p.pending
	p.pending = nil
	p.mu.Unlock()

	p.renderInto(out, target, fresh)
}

// renderInto fills the stereo output buffers. Split out from the stream
// callback so the synth path is testable without a device.
func (p *Processor) renderInto(out [][]float32, windTarget float64, fresh []voice) {
	dt := 1.0 / float64(SampleRate)
	vol := 0.25

	p.voices = append(p.voices, fresh...)
	if len(p.voices) > maxVoices {
		p.voices = p.voices[len(p.voices)-maxVoices:]
	}

	for i := 0; i < len(out[0]); i++ {
		// Slow morph so gusts swell rather than step
		p.windSmooth = p.windSmooth*0.9995 + windTarget*0.0005

		sampleL, sampleR := 0.0, 0.0
		for j, f := range padFreqs {
			oscL := triangle(p.time * (f * 0.999))
			oscR := triangle(p.time * (f * 1.001))

			g := 1.0 / float64(len(padFreqs))
			lfo := math.Sin(p.time*0.2 + float64(j))

			sampleL += oscL * g * (0.7 + 0.3*lfo)
			sampleR += oscR * g * (0.7 + 0.3*lfo)
		}

		// Wind opens both the filter and the pad level
		wind := math.Min(p.windSmooth/20.0, 1.0)
		padGain := 0.25 + 0.75*wind
		sampleL *= padGain
		sampleR *= padGain

		for v := range p.voices {
			p.voices[v].phase += p.voices[v].freq * dt
			s := math.Sin(2*math.Pi*p.voices[v].phase) * p.voices[v].amp
			p.voices[v].amp *= math.Exp(-p.voices[v].decay * dt)
			sampleL += s * 0.5
			sampleR += s * 0.5
		}

		cutoff := 300.0 + 900.0*wind
		var outL, outR float64
		outL, p.filterState[0] = lpf(sampleL, cutoff, dt, p.filterState[0])
		outR, p.filterState[1] = lpf(sampleR, cutoff, dt, p.filterState[1])

		delayL := p.delayLine[0][p.delayHead]
		delayR := p.delayLine[1][p.delayHead]

		// Cross-talk feedback smears the stereo image
		mixL := outL + delayL*0.3 + delayR*0.1
		mixR := outR + delayR*0.3 + delayL*0.1

		p.delayLine[0][p.delayHead] = mixL * 0.7
		p.delayLine[1][p.delayHead] = mixR * 0.7
		p.delayHead = (p.delayHead + 1) % len(p.delayLine[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)

		p.time += dt
	}

	// Drop voices that have decayed to silence
	live := p.voices[:0]
	for _, v := range p.voices {
		if v.amp > 1e-4 {
			live = append(live, v)
		}
	}
	p.voices = live
}
