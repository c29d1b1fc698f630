package audio

import (
	"math"
	"testing"
)

func stereoBuffer(n int) [][]float32 {
	return [][]float32{make([]float32, n), make([]float32, n)}
}

func peak(buf []float32) float64 {
	max := 0.0
	for _, s := range buf {
		if a := math.Abs(float64(s)); a > max {
			max = a
		}
	}
	return max
}

func TestRenderProducesSignal(t *testing.T) {
	p := NewProcessor()
	out := stereoBuffer(BufferSize)

	p.renderInto(out, 0, nil)

	if peak(out[0]) == 0 || peak(out[1]) == 0 {
		t.Fatal("pad rendered silence")
	}
	for _, ch := range out {
		for _, s := range ch {
			if math.Abs(float64(s)) > 1.0 {
				t.Fatal("sample clipped past full scale")
			}
		}
	}
}

func TestWindRaisesLevel(t *testing.T) {
	calm := NewProcessor()
	windy := NewProcessor()
	windy.windSmooth = 20 // pre-settled strong wind

	calmOut := stereoBuffer(BufferSize)
	windyOut := stereoBuffer(BufferSize)
	calm.renderInto(calmOut, 0, nil)
	windy.renderInto(windyOut, 20, nil)

	if peak(windyOut[0]) <= peak(calmOut[0]) {
		t.Errorf("wind did not raise the pad level: calm %f, windy %f",
			peak(calmOut[0]), peak(windyOut[0]))
	}
}

func TestPluckDecays(t *testing.T) {
	p := NewProcessor()
	p.Pluck(30)

	out := stereoBuffer(BufferSize)
	p.renderInto(out, 0, nil)

	if len(p.voices) != 1 {
		t.Fatalf("got %d voices, want 1", len(p.voices))
	}
	first := p.voices[0].amp

	// Several seconds of rendering should silence the voice entirely.
	for i := 0; i < SampleRate*6/BufferSize; i++ {
		p.renderInto(out, 0, nil)
	}
	if len(p.voices) != 0 {
		t.Errorf("voice survived with amp %f (started at %f)", p.voices[0].amp, first)
	}
}

func TestPluckVoiceCap(t *testing.T) {
	p := NewProcessor()
	for i := 0; i < maxVoices*3; i++ {
		p.Pluck(float64(i))
	}
	if len(p.pending) > maxVoices {
		t.Errorf("pending voices %d exceed cap %d", len(p.pending), maxVoices)
	}

	out := stereoBuffer(BufferSize)
	p.renderInto(out, 0, p.pending)
	if len(p.voices) > maxVoices {
		t.Errorf("active voices %d exceed cap %d", len(p.voices), maxVoices)
	}
}
