package dst

import "math"

// Stitch is a single decoded record at an absolute position.
type Stitch struct {
	X       float64       `json:"x" yaml:"x"`
	Y       float64       `json:"y" yaml:"y"`
	Command StitchCommand `json:"command" yaml:"command"`
}

// PatternMetadata holds the fields read from the file header.
//
// Counts are as declared by the header and are not checked against the body.
// A nil field means the header value was missing or unreadable.
type PatternMetadata struct {
	Label       *string `json:"label" yaml:"label"`
	StitchCount *uint32 `json:"stitch_count" yaml:"stitch_count"`
	ColorCount  *uint32 `json:"color_count" yaml:"color_count"`
}

// Bounds is the axis-aligned box enclosing every stitch, jumps included.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

func emptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

func (b *Bounds) update(x, y float64) {
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Width returns the horizontal extent in machine units.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent in machine units.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Statistics are derived from the decoded stitch sequence.
type Statistics struct {
	RealStitchCount      int     `json:"real_stitch_count" yaml:"real_stitch_count"`
	JumpCount            int     `json:"jump_count" yaml:"jump_count"`
	ColorChangeCount     int     `json:"color_change_count" yaml:"color_change_count"`
	EstimatedTimeMinutes float64 `json:"estimated_time_minutes" yaml:"estimated_time_minutes"`
}

// Pattern is a fully decoded design. Stitches are in file order, which is
// also the order the machine sews them.
type Pattern struct {
	Stitches     []Stitch        `json:"stitches" yaml:"stitches"`
	Metadata     PatternMetadata `json:"metadata" yaml:"metadata"`
	Bounds       *Bounds         `json:"bounds" yaml:"bounds"`
	ColorChanges int             `json:"color_changes" yaml:"color_changes"`
	Statistics   Statistics      `json:"statistics" yaml:"statistics"`
}

func (p *Pattern) addStitch(x, y float64, cmd StitchCommand) {
	p.Stitches = append(p.Stitches, Stitch{X: x, Y: y, Command: cmd})
	if cmd == CommandColorChange {
		p.ColorChanges++
	}
}

// CalculateBounds recomputes Bounds from the current stitches.
// Bounds is left nil for an empty pattern.
func (p *Pattern) CalculateBounds() {
	if len(p.Stitches) == 0 {
		p.Bounds = nil
		return
	}
	b := emptyBounds()
	for _, s := range p.Stitches {
		b.update(s.X, s.Y)
	}
	p.Bounds = &b
}

// Displacements returns the per-record (dx, dy) pairs by differencing
// consecutive positions, starting from the origin.
func (p *Pattern) Displacements() [][2]float64 {
	result := make([][2]float64, len(p.Stitches))
	var px, py float64
	for i, s := range p.Stitches {
		result[i] = [2]float64{s.X - px, s.Y - py}
		px, py = s.X, s.Y
	}
	return result
}

// ColorBlocks returns the number of thread blocks, i.e. color changes plus one,
// or zero for an empty pattern.
func (p *Pattern) ColorBlocks() int {
	if len(p.Stitches) == 0 {
		return 0
	}
	return p.ColorChanges + 1
}
