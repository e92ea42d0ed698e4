// Package dst decodes Tajima DST embroidery files into stitch patterns.
//
// A DST file is a 512 byte text header followed by 3 byte stitch records.
// Each record carries a balanced base-3 displacement and an opcode in the
// high bits of its third byte. Decoding is tolerant: only a file too short to
// hold a header is rejected, everything else degrades to best effort output.
package dst

import (
	"errors"
	"fmt"
	"io"
)

// ErrInsufficientData is returned when the input cannot hold a DST header.
var ErrInsufficientData = errors.New("invalid DST file: insufficient data")

const (
	// DefaultMachineSpeedSPM is the stitching rate used for time estimates.
	DefaultMachineSpeedSPM = 800.0
	// DefaultColorChangePenaltySeconds is the time charged per color change.
	DefaultColorChangePenaltySeconds = 15.0
)

// Opcode masks on the third record byte, in precedence order.
const (
	maskEnd         = 0b11110011
	maskColorChange = 0b11000011
	maskSequinMode  = 0b01000011
	maskJump        = 0b10000011
)

// Options tunes the derived statistics. Zero values select the defaults.
type Options struct {
	MachineSpeedSPM           float64
	ColorChangePenaltySeconds float64
}

func (o Options) withDefaults() Options {
	if o.MachineSpeedSPM <= 0 {
		o.MachineSpeedSPM = DefaultMachineSpeedSPM
	}
	if o.ColorChangePenaltySeconds <= 0 {
		o.ColorChangePenaltySeconds = DefaultColorChangePenaltySeconds
	}
	return o
}

// EstimateMinutes returns the machine time for the given counts.
func (o Options) EstimateMinutes(realStitches, colorChanges int) float64 {
	o = o.withDefaults()
	return float64(realStitches)/o.MachineSpeedSPM +
		float64(colorChanges)*o.ColorChangePenaltySeconds/60.0
}

// bitWeight is one entry of the displacement table: bit `bit` of record
// byte `index` contributes `weight` when set.
type bitWeight struct {
	index  int
	bit    uint
	weight int
}

var dxTable = [10]bitWeight{
	{2, 2, 81}, {2, 3, -81},
	{1, 2, 27}, {1, 3, -27},
	{0, 2, 9}, {0, 3, -9},
	{1, 0, 3}, {1, 1, -3},
	{0, 0, 1}, {0, 1, -1},
}

var dyTable = [10]bitWeight{
	{2, 5, 81}, {2, 4, -81},
	{1, 5, 27}, {1, 4, -27},
	{0, 5, 9}, {0, 4, -9},
	{1, 7, 3}, {1, 6, -3},
	{0, 7, 1}, {0, 6, -1},
}

func weightedSum(rec [3]byte, table *[10]bitWeight) int {
	sum := 0
	for _, w := range table {
		if rec[w.index]>>w.bit&1 == 1 {
			sum += w.weight
		}
	}
	return sum
}

func decodeDX(rec [3]byte) int {
	return weightedSum(rec, &dxTable)
}

// decodeDY inverts the raw sum: the file's y axis points up, ours points down.
func decodeDY(rec [3]byte) int {
	return -weightedSum(rec, &dyTable)
}

// classify maps the third record byte to a command. Masks overlap, so the
// order of the checks matters. The jump mask yields CommandMove here; the caller
// turns it into CommandSequinEject while sequin mode is on.
func classify(b2 byte) StitchCommand {
	switch {
	case b2&maskEnd == maskEnd:
		return CommandEnd
	case b2&maskColorChange == maskColorChange:
		return CommandColorChange
	case b2&maskSequinMode == maskSequinMode:
		return CommandSequinMode
	case b2&maskJump == maskJump:
		return CommandMove
	default:
		return CommandStitch
	}
}

// decodeStitches walks the body three bytes at a time, appending records to
// p and filling in its statistics. A trailing partial record is ignored.
func decodeStitches(body []byte, p *Pattern, opts Options) {
	var (
		x, y       float64
		sequinMode bool
		stats      Statistics
	)

	for off := 0; off+3 <= len(body); off += 3 {
		rec := [3]byte{body[off], body[off+1], body[off+2]}
		x += float64(decodeDX(rec))
		y += float64(decodeDY(rec))

		cmd := classify(rec[2])
		switch cmd {
		case CommandColorChange:
			stats.ColorChangeCount++
		case CommandSequinMode:
			sequinMode = !sequinMode
		case CommandMove:
			if sequinMode {
				cmd = CommandSequinEject
			} else {
				stats.JumpCount++
			}
		case CommandStitch:
			stats.RealStitchCount++
		}
		p.addStitch(x, y, cmd)
		if cmd == CommandEnd {
			break
		}
	}

	stats.EstimatedTimeMinutes = opts.EstimateMinutes(stats.RealStitchCount, stats.ColorChangeCount)
	p.Statistics = stats
}

// Decode decodes a complete DST file with default options.
func Decode(data []byte) (*Pattern, error) {
	return DecodeWithOptions(data, Options{})
}

// DecodeWithOptions decodes a complete DST file. The only error is
// ErrInsufficientData for input shorter than HeaderSize.
func DecodeWithOptions(data []byte, opts Options) (*Pattern, error) {
	if len(data) < HeaderSize {
		return nil, ErrInsufficientData
	}
	p := &Pattern{
		Stitches: []Stitch{},
		Metadata: parseHeader(data),
	}
	decodeStitches(data[HeaderSize:], p, opts)
	p.CalculateBounds()
	return p, nil
}

// DecodeReader reads r to EOF and decodes the result.
func DecodeReader(r io.Reader, opts Options) (*Pattern, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read DST data: %w", err)
	}
	return DecodeWithOptions(data, opts)
}
