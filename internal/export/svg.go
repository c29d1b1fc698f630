// Package export renders finished runs to SVG: wind force traces, body
// speed traces, and braille canvas snapshots.
package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/san-kum/forcelab/internal/hostsim"
	"github.com/san-kum/forcelab/internal/store"
	"github.com/san-kum/forcelab/internal/viz"
)

// Trace is one labelled series drawn as a polyline.
type Trace struct {
	Label  string
	Color  string
	Points []Point
}

type Point struct {
	X, Y float64
}

var traceColors = []string{"#00ff00", "#00cccc", "#ffcc00", "#ff66ff", "#ff6633"}

// RunTraces builds the standard plot set for a run: one wind-force trace
// per zone and one speed trace per body.
func RunTraces(res *hostsim.Result) []Trace {
	zones := map[string]*Trace{}
	bodies := map[string]*Trace{}
	var order []*Trace

	pick := func(m map[string]*Trace, key, label string) *Trace {
		tr := m[key]
		if tr == nil {
			tr = &Trace{Label: label, Color: traceColors[len(order)%len(traceColors)]}
			m[key] = tr
			order = append(order, tr)
		}
		return tr
	}

	for _, fr := range res.Frames {
		for _, z := range fr.Wind {
			tr := pick(zones, z.Zone, "wind "+z.Zone)
			tr.Points = append(tr.Points, Point{X: fr.Time, Y: z.Force})
		}
		for _, b := range fr.Bodies {
			tr := pick(bodies, b.ID, "speed "+b.ID)
			tr.Points = append(tr.Points, Point{X: fr.Time, Y: b.Speed()})
		}
	}
	out := make([]Trace, len(order))
	for i, tr := range order {
		out[i] = *tr
	}
	return out
}

// StoredTraces rebuilds the standard plot set from a saved run's series,
// matching the layout RunTraces produces from live frames.
func StoredTraces(bodies map[string]*store.BodyTrack, zones map[string]*store.ZoneTrack) []Trace {
	var order []Trace

	zoneNames := make([]string, 0, len(zones))
	for name := range zones {
		zoneNames = append(zoneNames, name)
	}
	sort.Strings(zoneNames)
	for _, name := range zoneNames {
		tr := Trace{Label: "wind " + name, Color: traceColors[len(order)%len(traceColors)]}
		track := zones[name]
		for i, t := range track.Times {
			tr.Points = append(tr.Points, Point{X: t, Y: track.Forces[i]})
		}
		order = append(order, tr)
	}

	bodyNames := make([]string, 0, len(bodies))
	for name := range bodies {
		bodyNames = append(bodyNames, name)
	}
	sort.Strings(bodyNames)
	for _, name := range bodyNames {
		tr := Trace{Label: "speed " + name, Color: traceColors[len(order)%len(traceColors)]}
		track := bodies[name]
		for i, t := range track.Times {
			tr.Points = append(tr.Points, Point{X: t, Y: track.Speeds[i]})
		}
		order = append(order, tr)
	}

	return order
}

// TracesToSVG plots traces over a shared time axis with a legend.
func TracesToSVG(traces []Trace, width, height int) string {
	var all []Point
	for _, tr := range traces {
		all = append(all, tr.Points...)
	}
	if len(all) < 2 {
		return ""
	}

	minX, maxX, minY, maxY := bounds(all)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, tr := range traces {
		if len(tr.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, tr.Color))
		for j, p := range tr.Points {
			x := (p.X - minX) / (maxX - minX) * float64(width)
			y := float64(height) - (p.Y-minY)/(maxY-minY)*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, tr.Color, tr.Label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(points []Point) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	return
}

// CanvasToSVG converts a braille canvas to SVG: one dot per lit pixel
// plus the overlay glyphs as text.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4
	canvas.EachDot(func(x, y int) {
		cx := float64(x)*scale + scale/2
		cy := float64(y)*scale + scale/2
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
	})
	sb.WriteString("</g>\n")

	canvas.EachMark(func(col, row int, glyph rune) {
		cx := (float64(col)*2 + 1) * scale
		cy := (float64(row)*4 + 3) * scale
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#00ff00" font-family="monospace" font-size="%.1f" text-anchor="middle">%c</text>
`, cx, cy, scale*4, glyph))
	})

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteSVG renders the run's standard traces and writes them to path.
func WriteSVG(path string, res *hostsim.Result, width, height int) error {
	svg := TracesToSVG(RunTraces(res), width, height)
	if svg == "" {
		return fmt.Errorf("run %q has too few frames to plot", res.Scenario)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
