// Package placeholder renders generated posters for titles the metadata
// catalog could not identify.
package placeholder

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/url"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Path = "/placeholder/poster.png"

	Width  = 300
	Height = 450

	// Text is drawn on a half-size canvas and scaled up so the bitmap face
	// stays legible.
	scale       = 2
	canvasW     = Width / scale
	canvasH     = Height / scale
	margin      = 8
	lineSpacing = 2
	maxLines    = 12
)

// URL returns the poster URL for title. The URL is relative when publicURL
// is empty.
func URL(publicURL, title string) string {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	return base + Path + "?title=" + url.QueryEscape(title)
}

// Render writes a PNG poster showing title on a background derived from it.
func Render(w io.Writer, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Unknown"
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundFor(title)), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + lineSpacing
	charsPerLine := (canvasW - 2*margin) / face.Advance

	lines := wrap(title, charsPerLine)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if len(last) > charsPerLine-1 {
			last = last[:charsPerLine-1]
		}
		lines[maxLines-1] = string(last) + "~"
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	top := (canvasH - len(lines)*lineHeight) / 2
	for i, line := range lines {
		width := drawer.MeasureString(line).Ceil()
		x := (canvasW - width) / 2
		y := top + i*lineHeight + face.Ascent
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}

	poster := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.NearestNeighbor.Scale(poster, poster.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)

	if err := png.Encode(w, poster); err != nil {
		return fmt.Errorf("encode placeholder poster: %w", err)
	}
	return nil
}

// backgroundFor picks a stable dark colour so white text stays readable.
func backgroundFor(title string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(title)))
	sum := h.Sum32()
	return color.RGBA{
		R: uint8(30 + sum%90),
		G: uint8(30 + (sum>>8)%90),
		B: uint8(30 + (sum>>16)%90),
		A: 255,
	}
}

// wrap splits text into lines of at most width runes, breaking on spaces
// and hard-splitting words longer than a line.
func wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var current []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
