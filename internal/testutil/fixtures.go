// Package testutil provides DST file fixtures and filesystem helpers for tests.
package testutil

import "fmt"

// Control bytes for the third byte of a stitch record.
const (
	CtrlStitch      byte = 0x03
	CtrlJump        byte = 0x83
	CtrlColorChange byte = 0xC3
	CtrlSequinMode  byte = 0x43
	CtrlEnd         byte = 0xF3
)

// MaxDisplacement is the largest per-axis move one record can encode.
const MaxDisplacement = 121

// Bit positions for each balanced base-3 digit, lowest weight first.
// Each entry is {positive byte, positive bit, negative byte, negative bit}.
var (
	xDigits = [5][4]uint{
		{0, 0, 0, 1},
		{1, 0, 1, 1},
		{0, 2, 0, 3},
		{1, 2, 1, 3},
		{2, 2, 2, 3},
	}
	yDigits = [5][4]uint{
		{0, 7, 0, 6},
		{1, 7, 1, 6},
		{0, 5, 0, 4},
		{1, 5, 1, 4},
		{2, 5, 2, 4},
	}
)

// EncodeRecord builds a 3 byte record for the given displacement and control
// byte. dy uses the decoded (screen) orientation. It panics when a component
// is outside ±MaxDisplacement.
func EncodeRecord(dx, dy int, ctrl byte) [3]byte {
	var rec [3]byte
	rec[2] = ctrl
	setDigits(&rec, dx, &xDigits)
	setDigits(&rec, -dy, &yDigits)
	return rec
}

func setDigits(rec *[3]byte, v int, digits *[5][4]uint) {
	if v > MaxDisplacement || v < -MaxDisplacement {
		panic(fmt.Sprintf("displacement %d out of range", v))
	}
	for _, d := range digits {
		r := ((v % 3) + 3) % 3
		switch r {
		case 1:
			rec[d[0]] |= 1 << d[1]
			v--
		case 2:
			rec[d[2]] |= 1 << d[3]
			v++
		}
		v /= 3
	}
}

// DSTBuilder assembles a DST file in memory.
type DSTBuilder struct {
	header [512]byte
	body   []byte
}

// NewDST returns a builder with a blank (space filled) header.
func NewDST() *DSTBuilder {
	b := &DSTBuilder{}
	for i := range b.header {
		b.header[i] = ' '
	}
	copy(b.header[0:], "LA:")
	copy(b.header[20:], "ST:")
	copy(b.header[31:], "CO:")
	b.header[511] = 0x1A
	return b
}

// HeaderBytes writes raw bytes into the header at offset.
func (b *DSTBuilder) HeaderBytes(offset int, data []byte) *DSTBuilder {
	copy(b.header[offset:], data)
	return b
}

// Label sets the label field (bytes 3..19), NUL padded.
func (b *DSTBuilder) Label(label string) *DSTBuilder {
	return b.field(3, 19, label)
}

// StitchCountField sets the raw stitch count text (bytes 23..30).
func (b *DSTBuilder) StitchCountField(text string) *DSTBuilder {
	return b.field(23, 30, text)
}

// ColorCountField sets the raw color count text (bytes 31..34).
func (b *DSTBuilder) ColorCountField(text string) *DSTBuilder {
	return b.field(31, 34, text)
}

func (b *DSTBuilder) field(start, end int, text string) *DSTBuilder {
	for i := start; i < end; i++ {
		b.header[i] = 0
	}
	copy(b.header[start:end], text)
	return b
}

// Record appends a record with an arbitrary control byte.
func (b *DSTBuilder) Record(dx, dy int, ctrl byte) *DSTBuilder {
	rec := EncodeRecord(dx, dy, ctrl)
	b.body = append(b.body, rec[:]...)
	return b
}

// Stitch appends a normal stitch.
func (b *DSTBuilder) Stitch(dx, dy int) *DSTBuilder {
	return b.Record(dx, dy, CtrlStitch)
}

// Jump appends a jump (or a sequin eject while sequin mode is on).
func (b *DSTBuilder) Jump(dx, dy int) *DSTBuilder {
	return b.Record(dx, dy, CtrlJump)
}

// ColorChange appends a zero-displacement color change.
func (b *DSTBuilder) ColorChange() *DSTBuilder {
	return b.Record(0, 0, CtrlColorChange)
}

// SequinMode appends a zero-displacement sequin mode toggle.
func (b *DSTBuilder) SequinMode() *DSTBuilder {
	return b.Record(0, 0, CtrlSequinMode)
}

// End appends the end-of-pattern record.
func (b *DSTBuilder) End() *DSTBuilder {
	b.body = append(b.body, 0x00, 0x00, CtrlEnd)
	return b
}

// Raw appends bytes to the body unchanged.
func (b *DSTBuilder) Raw(data ...byte) *DSTBuilder {
	b.body = append(b.body, data...)
	return b
}

// Body returns a copy of the body bytes.
func (b *DSTBuilder) Body() []byte {
	return append([]byte(nil), b.body...)
}

// Bytes returns the complete file.
func (b *DSTBuilder) Bytes() []byte {
	out := make([]byte, 0, len(b.header)+len(b.body))
	out = append(out, b.header[:]...)
	return append(out, b.body...)
}

// Square returns a closed square of side n stitched in steps of at most
// step units, starting and ending at the origin, followed by End.
func Square(n, step int) *DSTBuilder {
	b := NewDST().Label("SQUARE")
	for _, dir := range [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		remaining := n
		for remaining > 0 {
			d := min(step, remaining)
			b.Stitch(dir[0]*d, dir[1]*d)
			remaining -= d
		}
	}
	return b.End()
}
