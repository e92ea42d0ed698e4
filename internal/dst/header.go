package dst

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// HeaderSize is the fixed size of the DST header block.
const HeaderSize = 512

// Header field ranges. These match what real machine files carry, which is
// offset from the nominal "LA:", "ST:" and "CO:" tag positions.
const (
	labelStart       = 3
	labelEnd         = 19
	stitchCountStart = 23
	stitchCountEnd   = 30
	colorCountStart  = 31
	colorCountEnd    = 34
)

// parseHeader extracts metadata from the first HeaderSize bytes of data.
// It never fails: unreadable fields are left nil.
func parseHeader(data []byte) PatternMetadata {
	var md PatternMetadata
	if len(data) < HeaderSize {
		return md
	}
	if label, ok := headerText(data[labelStart:labelEnd]); ok && label != "" {
		md.Label = &label
	}
	md.StitchCount = headerCount(data[stitchCountStart:stitchCountEnd])
	md.ColorCount = headerCount(data[colorCountStart:colorCountEnd])
	return md
}

func headerText(field []byte) (string, bool) {
	if !utf8.Valid(field) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimRight(string(field), "\x00")), true
}

func headerCount(field []byte) *uint32 {
	text, ok := headerText(field)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 10, 32)
	if err != nil {
		return nil
	}
	count := uint32(n)
	return &count
}
