// Package overlay draws composition guides and detections on a copy of a frame.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/menta2k/photo-coach/pkg/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay colours
var (
	GridColor  = color.NRGBA{255, 255, 255, 255}
	BoxColor   = color.NRGBA{0, 255, 0, 255}
	ScoreColor = color.NRGBA{255, 255, 0, 255}
)

// Thickness of grid and box strokes in pixels
const Thickness = 2

// labelOffset is the gap between a box's top edge and its label baseline
const labelOffset = 10

// Options selects what Render draws
type Options struct {
	Grid  bool
	Main  *types.DetectedObject
	Score *types.ScoreReport
}

// Render returns a zero-origin copy of frame with the requested overlays
func Render(frame image.Image, opts Options) *image.NRGBA {
	dst := imaging.Clone(frame)

	if opts.Grid {
		DrawGrid(dst)
	}
	if opts.Main != nil {
		// Clone rebases to the origin, so boxes move with it
		obj := *opts.Main
		obj.BBox = obj.BBox.Sub(frame.Bounds().Min)
		DrawObject(dst, obj)
	}
	if opts.Score != nil {
		DrawText(dst, 8, 16, ScoreCaption(*opts.Score), ScoreColor)
	}
	return dst
}

// DrawGrid draws the 3x3 rule-of-thirds grid in place
func DrawGrid(dst draw.Image) {
	b := dst.Bounds()
	xStep := b.Dx() / 3
	yStep := b.Dy() / 3

	for i := 1; i < 3; i++ {
		x := b.Min.X + i*xStep
		fill(dst, image.Rect(x-Thickness/2, b.Min.Y, x-Thickness/2+Thickness, b.Max.Y), GridColor)
	}
	for i := 1; i < 3; i++ {
		y := b.Min.Y + i*yStep
		fill(dst, image.Rect(b.Min.X, y-Thickness/2, b.Max.X, y-Thickness/2+Thickness), GridColor)
	}
}

// DrawObject outlines a detection and writes "label (0.87)" above it
func DrawObject(dst draw.Image, obj types.DetectedObject) {
	DrawBox(dst, obj.BBox, BoxColor)
	DrawText(dst, obj.BBox.Min.X, obj.BBox.Min.Y-labelOffset, Label(obj), BoxColor)
}

// DrawBox draws a rectangle outline in place
func DrawBox(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Canon()
	t := Thickness
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// DrawText writes s with its baseline at (x, y). Text is kept inside the frame.
func DrawText(dst draw.Image, x, y int, s string, c color.Color) {
	face := basicfont.Face7x13
	b := dst.Bounds()

	if top := b.Min.Y + face.Ascent; y < top {
		y = top
	}
	if x < b.Min.X {
		x = b.Min.X
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Label formats a detection the way it is shown on screen
func Label(obj types.DetectedObject) string {
	return fmt.Sprintf("%s (%.2f)", obj.Label, obj.Confidence)
}

// ScoreCaption summarises a report in one line
func ScoreCaption(r types.ScoreReport) string {
	return fmt.Sprintf("Score %.2f  P %.2f  A %.2f  L %.2f  F %.2f", r.FinalScore, r.Position, r.Angle, r.Lighting, r.Focus)
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}
