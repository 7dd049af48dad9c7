// Package timeline records a fighter's block and combo loop tick by tick and
// renders it as a PNG chart.
package timeline

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"field-fighter/internal/combat"
	"field-fighter/internal/game"
)

// ErrNoSamples is returned when rendering an empty recording.
var ErrNoSamples = errors.New("timeline: no samples recorded")

// Sample is one tick of a fighter's resource loop
type Sample struct {
	Time          float64
	HP            float64
	MaxHP         float64
	BlockCount    int
	MaxBlockCount int
	KineticIntake int
	ComboTier     string
	ComboHits     int
	BlockActive   bool
	Broken        bool
	StunLocked    bool
	Vulnerable    bool
	Fatigued      bool
	KineticGlow   bool
}

// Marker labels a moment on the chart
type Marker struct {
	Time  float64
	Label string
	Color string
}

// Recorder collects samples for one fighter
type Recorder struct {
	mu        sync.Mutex
	fighterID string
	samples   []Sample
	markers   []Marker
}

// NewRecorder records the fighter with the given ID
func NewRecorder(fighterID string) *Recorder {
	return &Recorder{fighterID: fighterID}
}

// Record appends a sample from a snapshot. It reports false when the fighter
// is not in the snapshot.
func (r *Recorder) Record(snap game.GameSnapshot) bool {
	f, ok := snap.Fighter(r.fighterID)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, Sample{
		Time:          snap.SimTime,
		HP:            f.HP,
		MaxHP:         f.MaxHP,
		BlockCount:    f.BlockCount,
		MaxBlockCount: f.MaxBlockCount,
		KineticIntake: f.KineticIntake,
		ComboTier:     f.ComboTier,
		ComboHits:     f.ComboHits,
		BlockActive:   f.BlockActive,
		Broken:        f.BlockBroken,
		StunLocked:    f.StunLocked,
		Vulnerable:    f.Vulnerable,
		Fatigued:      f.Fatigued,
		KineticGlow:   f.KineticGlow,
	})
	return true
}

// Mark adds a labeled vertical marker
func (r *Recorder) Mark(t float64, label, hexColor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = append(r.markers, Marker{Time: t, Label: label, Color: hexColor})
}

// Samples returns a copy of the recorded samples
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// Markers returns a copy of the recorded markers
func (r *Recorder) Markers() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Marker(nil), r.markers...)
}

// =============================================================================
// RENDERING
// =============================================================================

// Chart layout
const (
	chartWidth  = 1200
	chartHeight = 640
	marginLeft  = 90
	marginRight = 30
	marginTop   = 50

	hpTop      = 60
	hpHeight   = 150
	blockTop   = 240
	blockH     = 200
	bandTop    = 470
	bandHeight = 18
	bandGap    = 6
)

var (
	colorBackground = color.RGBA{12, 12, 28, 255}
	colorGrid       = color.RGBA{30, 30, 45, 255}
	colorLabel      = color.RGBA{200, 200, 215, 255}
	colorHP         = color.RGBA{83, 255, 69, 255}
	colorIntake     = parseHexColor(combat.ColorKineticStrike)
	colorBlockLine  = parseHexColor(combat.ColorBlock)
	colorBroken     = parseHexColor(combat.ColorBlockBroken)
	colorVulnerable = color.RGBA{255, 149, 0, 255}
	colorFatigue    = color.RGBA{120, 120, 135, 255}
	colorActive     = color.RGBA{79, 195, 247, 160}
	tierColors      = map[string]color.RGBA{
		"two_hit":   {255, 210, 62, 255},
		"three_hit": {255, 140, 26, 255},
		"five_hit":  {255, 62, 62, 255},
	}
)

// Render draws the recording as a PNG to w
func (r *Recorder) Render(w io.Writer, title string) error {
	samples := r.Samples()
	markers := r.Markers()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	face := loadFace(14)
	dc.SetFontFace(face)

	dc.SetColor(colorBackground)
	dc.DrawRectangle(0, 0, chartWidth, chartHeight)
	dc.Fill()

	t0, t1 := samples[0].Time, samples[len(samples)-1].Time
	if t1 <= t0 {
		t1 = t0 + 1
	}
	plotW := float64(chartWidth - marginLeft - marginRight)
	xAt := func(t float64) float64 {
		return marginLeft + (t-t0)/(t1-t0)*plotW
	}

	drawTimeGrid(dc, t0, t1, xAt)

	dc.SetColor(colorLabel)
	dc.DrawString(title, marginLeft, marginTop-20)

	drawHP(dc, samples, xAt)
	drawBlock(dc, samples, xAt)
	drawBands(dc, samples, xAt)
	drawMarkers(dc, markers, xAt)

	return dc.EncodePNG(w)
}

// SavePNG renders into path, creating its directory
func (r *Recorder) SavePNG(path, title string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("timeline: create dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("timeline: create %s: %w", path, err)
	}
	if err := r.Render(file, title); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func drawTimeGrid(dc *gg.Context, t0, t1 float64, xAt func(float64) float64) {
	step := 0.5
	if t1-t0 > 20 {
		step = 2
	}
	dc.SetLineWidth(1)
	for t := step * float64(int(t0/step)); t <= t1; t += step {
		if t < t0 {
			continue
		}
		x := xAt(t)
		dc.SetColor(colorGrid)
		dc.DrawLine(x, hpTop, x, bandTop+4*(bandHeight+bandGap))
		dc.Stroke()
		dc.SetColor(colorLabel)
		dc.DrawStringAnchored(fmt.Sprintf("%.1fs", t), x, chartHeight-20, 0.5, 0.5)
	}
}

func drawHP(dc *gg.Context, samples []Sample, xAt func(float64) float64) {
	dc.SetColor(colorLabel)
	dc.DrawStringAnchored("HP", marginLeft-12, hpTop+hpHeight/2, 1, 0.5)

	dc.SetColor(colorHP)
	dc.SetLineWidth(2)
	for i, s := range samples {
		frac := 0.0
		if s.MaxHP > 0 {
			frac = s.HP / s.MaxHP
		}
		y := hpTop + hpHeight*(1-frac)
		if i == 0 {
			dc.MoveTo(xAt(s.Time), y)
		} else {
			dc.LineTo(xAt(s.Time), y)
		}
	}
	dc.Stroke()
}

func drawBlock(dc *gg.Context, samples []Sample, xAt func(float64) float64) {
	maxCount := samples[0].MaxBlockCount
	if maxCount <= 0 {
		maxCount = 1
	}
	yAt := func(v int) float64 {
		return blockTop + blockH*(1-float64(v)/float64(maxCount))
	}

	dc.SetColor(colorLabel)
	dc.DrawStringAnchored("block", marginLeft-12, blockTop+blockH/2-10, 1, 0.5)
	dc.SetColor(colorIntake)
	dc.DrawStringAnchored("intake", marginLeft-12, blockTop+blockH/2+10, 1, 0.5)

	// Block points as a step line, intake dashed over it
	dc.SetColor(colorBlockLine)
	dc.SetLineWidth(3)
	for i, s := range samples {
		x, y := xAt(s.Time), yAt(s.BlockCount)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, yAt(samples[i-1].BlockCount))
		dc.LineTo(x, y)
	}
	dc.Stroke()

	dc.SetColor(colorIntake)
	dc.SetLineWidth(2)
	dc.SetDash(6, 4)
	for i, s := range samples {
		x, y := xAt(s.Time), yAt(s.KineticIntake)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, yAt(samples[i-1].KineticIntake))
		dc.LineTo(x, y)
	}
	dc.Stroke()
	dc.SetDash()
}

// drawBands shades state intervals: block held, break stun, vulnerability,
// fatigue and combo tier.
func drawBands(dc *gg.Context, samples []Sample, xAt func(float64) float64) {
	rows := []struct {
		label string
		color func(s Sample) (color.Color, bool)
	}{
		{"held", func(s Sample) (color.Color, bool) { return colorActive, s.BlockActive }},
		{"broken", func(s Sample) (color.Color, bool) {
			switch {
			case s.StunLocked:
				return colorBroken, true
			case s.Vulnerable:
				return colorVulnerable, true
			}
			return nil, false
		}},
		{"fatigue", func(s Sample) (color.Color, bool) { return colorFatigue, s.Fatigued }},
		{"combo", func(s Sample) (color.Color, bool) {
			c, ok := tierColors[s.ComboTier]
			return c, ok && s.ComboHits > 0
		}},
	}

	for row, band := range rows {
		y := float64(bandTop + row*(bandHeight+bandGap))
		dc.SetColor(colorLabel)
		dc.DrawStringAnchored(band.label, marginLeft-12, y+bandHeight/2, 1, 0.5)

		for i := 0; i < len(samples)-1; i++ {
			c, on := band.color(samples[i])
			if !on {
				continue
			}
			x0, x1 := xAt(samples[i].Time), xAt(samples[i+1].Time)
			dc.SetColor(c)
			dc.DrawRectangle(x0, y, x1-x0+0.5, bandHeight)
			dc.Fill()
		}
	}
}

func drawMarkers(dc *gg.Context, markers []Marker, xAt func(float64) float64) {
	dc.SetLineWidth(1)
	for i, m := range markers {
		x := xAt(m.Time)
		dc.SetColor(parseHexColor(m.Color))
		dc.DrawLine(x, hpTop, x, blockTop+blockH)
		dc.Stroke()
		// Stagger labels so neighbours stay legible
		dc.DrawStringAnchored(m.Label, x+3, hpTop+12+float64(i%4)*14, 0, 0.5)
	}
}

// loadFace returns a TrueType face from a system font, falling back to the
// built-in bitmap face.
func loadFace(size float64) font.Face {
	fontPath := getFontPath()
	if fontPath == "" {
		return basicfont.Face7x13
	}

	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		log.Printf("⚠️ Failed to read font file: %v", err)
		return basicfont.Face7x13
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		log.Printf("⚠️ Failed to parse font: %v", err)
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("⚠️ Failed to create font face: %v", err)
		return basicfont.Face7x13
	}
	return face
}

func getFontPath() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}
