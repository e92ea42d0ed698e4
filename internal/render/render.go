// Package render draws decoded patterns to raster images.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/npratt/dstview/internal/dst"
)

var (
	// ErrInvalidSize is returned when the image or padding cannot hold a drawing.
	ErrInvalidSize = errors.New("invalid image size")
	// ErrInvalidColor is returned for a color that is not a hex string.
	ErrInvalidColor = errors.New("invalid color")
)

const (
	sequinRadius = 2.0
	jumpDash     = 4.0
	defaultColor = "#000000"
)

// Options controls the rendered image.
type Options struct {
	Width      int
	Height     int
	Padding    int
	LineWidth  float64
	Background string
	// Palette is cycled through on each color change.
	Palette   []string
	ShowJumps bool
	JumpColor string
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, o.Width, o.Height)
	}
	if o.Padding < 0 || 2*o.Padding >= min(o.Width, o.Height) {
		return fmt.Errorf("%w: padding %d in %dx%d", ErrInvalidSize, o.Padding, o.Width, o.Height)
	}
	colors := append([]string{o.Background, o.JumpColor}, o.Palette...)
	for _, c := range colors {
		if c != "" && !isHexColor(c) {
			return fmt.Errorf("%w: %q", ErrInvalidColor, c)
		}
	}
	return nil
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// transform maps design units to pixels, keeping the aspect ratio and
// centring the design inside the padded area.
type transform struct {
	scale   float64
	offX    float64
	offY    float64
	originX float64
	originY float64
}

func newTransform(b *dst.Bounds, opts Options) transform {
	availW := float64(opts.Width - 2*opts.Padding)
	availH := float64(opts.Height - 2*opts.Padding)

	scale := 1.0
	w, h := b.Width(), b.Height()
	switch {
	case w > 0 && h > 0:
		scale = math.Min(availW/w, availH/h)
	case w > 0:
		scale = availW / w
	case h > 0:
		scale = availH / h
	}

	return transform{
		scale:   scale,
		offX:    float64(opts.Padding) + (availW-w*scale)/2,
		offY:    float64(opts.Padding) + (availH-h*scale)/2,
		originX: b.MinX,
		originY: b.MinY,
	}
}

func (t transform) apply(x, y float64) (float64, float64) {
	return t.offX + (x-t.originX)*t.scale, t.offY + (y-t.originY)*t.scale
}

type painter struct {
	dc      *gg.Context
	opts    Options
	tf      transform
	palette []string
	color   int
	open    bool
}

func (p *painter) threadColor() string {
	return p.palette[p.color%len(p.palette)]
}

// flush strokes the pending stitch run in the current thread color.
func (p *painter) flush() error {
	if !p.open {
		return nil
	}
	p.open = false
	p.dc.SetHexColor(p.threadColor())
	p.dc.SetLineWidth(p.opts.LineWidth)
	return p.dc.Stroke()
}

func (p *painter) stitch(fromX, fromY, toX, toY float64) {
	if !p.open {
		p.dc.MoveTo(p.tf.apply(fromX, fromY))
		p.open = true
	}
	p.dc.LineTo(p.tf.apply(toX, toY))
}

func (p *painter) jump(fromX, fromY, toX, toY float64) error {
	if !p.opts.ShowJumps || (fromX == toX && fromY == toY) {
		return nil
	}
	x1, y1 := p.tf.apply(fromX, fromY)
	x2, y2 := p.tf.apply(toX, toY)
	p.dc.SetHexColor(p.opts.JumpColor)
	p.dc.SetLineWidth(math.Max(p.opts.LineWidth/2, 0.5))
	p.dc.SetDash(jumpDash, jumpDash)
	p.dc.DrawLine(x1, y1, x2, y2)
	err := p.dc.Stroke()
	p.dc.ClearDash()
	return err
}

func (p *painter) sequin(x, y float64) error {
	cx, cy := p.tf.apply(x, y)
	p.dc.SetHexColor(p.threadColor())
	p.dc.DrawCircle(cx, cy, sequinRadius*math.Max(p.opts.LineWidth, 1))
	return p.dc.Fill()
}

func (p *painter) draw(stitches []dst.Stitch) error {
	var x, y float64
	for _, s := range stitches {
		switch s.Command {
		case dst.CommandStitch:
			p.stitch(x, y, s.X, s.Y)
		case dst.CommandEnd:
			return p.flush()
		default:
			if err := p.flush(); err != nil {
				return err
			}
			switch s.Command {
			case dst.CommandMove:
				if err := p.jump(x, y, s.X, s.Y); err != nil {
					return err
				}
			case dst.CommandColorChange:
				p.color++
			case dst.CommandSequinEject:
				if err := p.sequin(s.X, s.Y); err != nil {
					return err
				}
			}
		}
		x, y = s.X, s.Y
	}
	return p.flush()
}

func newContext(p *dst.Pattern, opts Options) (*gg.Context, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Background == "" {
		opts.Background = "#FFFFFF"
	}
	if opts.JumpColor == "" {
		opts.JumpColor = "#BBBBBB"
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = []string{defaultColor}
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(gg.Hex(opts.Background))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	bounds := p.Bounds
	if bounds == nil {
		bounds = stitchBounds(p.Stitches)
	}
	if bounds == nil {
		return dc, nil
	}

	pt := &painter{
		dc:      dc,
		opts:    opts,
		tf:      newTransform(bounds, opts),
		palette: palette,
	}
	if err := pt.draw(p.Stitches); err != nil {
		_ = dc.Close()
		return nil, fmt.Errorf("draw pattern: %w", err)
	}
	return dc, nil
}

// stitchBounds computes the extent of stitches without touching the pattern
// they came from.
func stitchBounds(stitches []dst.Stitch) *dst.Bounds {
	tmp := dst.Pattern{Stitches: stitches}
	tmp.CalculateBounds()
	return tmp.Bounds
}

// Render draws p and returns the resulting image. An empty pattern yields
// a blank canvas.
func Render(p *dst.Pattern, opts Options) (image.Image, error) {
	dc, err := newContext(p, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush canvas: %w", err)
	}
	return dc.Image(), nil
}

// WritePNG renders p and encodes it as PNG to w.
func WritePNG(w io.Writer, p *dst.Pattern, opts Options) error {
	dc, err := newContext(p, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("flush canvas: %w", err)
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG renders p to a PNG file at path.
func SavePNG(path string, p *dst.Pattern, opts Options) error {
	dc, err := newContext(p, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}
