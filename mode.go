package rawbridge

import "fmt"

// DecodeMode selects the debayer resolution scale. It is validated once at
// startup and immutable for the lifetime of a run.
type DecodeMode int

const (
	DecodeFull    DecodeMode = iota // full sensor resolution (premium on R3D)
	DecodeHalf                      // half width and height
	DecodeQuarter                   // quarter width and height
	DecodeEighth                    // eighth width and height (R3D only)
)

func (m DecodeMode) String() string {
	switch m {
	case DecodeFull:
		return "full"
	case DecodeHalf:
		return "half"
	case DecodeQuarter:
		return "quarter"
	case DecodeEighth:
		return "eighth"
	default:
		return "unknown"
	}
}

// Factor returns the integer downsampling factor for this mode.
func (m DecodeMode) Factor() int {
	switch m {
	case DecodeHalf:
		return 2
	case DecodeQuarter:
		return 4
	case DecodeEighth:
		return 8
	default:
		return 1
	}
}

// ParseDecodeMode parses a --debayer flag value.
// "premium" is accepted as an alias for full, matching the R3D vocabulary.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch s {
	case "full", "premium":
		return DecodeFull, nil
	case "half":
		return DecodeHalf, nil
	case "quarter":
		return DecodeQuarter, nil
	case "eighth":
		return DecodeEighth, nil
	default:
		return DecodeFull, fmt.Errorf("%w: %q (use full, half, quarter, eighth)", ErrInvalidMode, s)
	}
}

// ScaledSize returns the output dimensions for a clip decoded at mode m.
// Both dimensions use truncating integer division; the engines round the
// same way, so the reported size always matches the decoded buffer.
func ScaledSize(width, height uint32, m DecodeMode) (uint32, uint32) {
	f := uint32(m.Factor())
	return width / f, height / f
}

// Rational is a frame rate expressed as an exact fraction.
type Rational struct {
	Num uint32
	Den uint32
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// knownRates maps the float frame rates the engines report to their exact
// rational forms. NTSC-family rates must round-trip as x*1000/1001.
var knownRates = []struct {
	rate float32
	r    Rational
}{
	{23.976, Rational{24000, 1001}},
	{24.0, Rational{24, 1}},
	{25.0, Rational{25, 1}},
	{29.97, Rational{30000, 1001}},
	{30.0, Rational{30, 1}},
	{47.952, Rational{48000, 1001}},
	{48.0, Rational{48, 1}},
	{50.0, Rational{50, 1}},
	{59.94, Rational{60000, 1001}},
	{60.0, Rational{60, 1}},
	{119.88, Rational{120000, 1001}},
	{120.0, Rational{120, 1}},
}

// RationalFromFPS converts an engine-reported float frame rate to a rational.
// Rates within 0.05 of a known broadcast rate snap to its exact fraction;
// anything else rounds to the nearest integer over 1.
func RationalFromFPS(fps float32) Rational {
	for _, kr := range knownRates {
		d := fps - kr.rate
		if d < 0 {
			d = -d
		}
		if d < 0.05 {
			return kr.r
		}
	}
	return Rational{uint32(fps + 0.5), 1}
}
