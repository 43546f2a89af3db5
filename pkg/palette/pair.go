package palette

import "fmt"

const (
	DefaultOutside = "#000000"
	DefaultInside  = "#8EF7F7"
)

// Pair holds the gradient endpoints: Outside colors points that escape immediately,
// Inside colors points that never escape.
type Pair struct {
	Outside RGB
	Inside  RGB
}

// Default is black outside, pale cyan inside.
var Default = Pair{
	Outside: HexToRGB(DefaultOutside),
	Inside:  HexToRGB(DefaultInside),
}

// NewPair parses both endpoints, reporting the first malformed one.
func NewPair(outside, inside string) (Pair, error) {
	o, err := ParseHex(outside)
	if err != nil {
		return Pair{}, fmt.Errorf("outside color: %w", err)
	}

	i, err := ParseHex(inside)
	if err != nil {
		return Pair{}, fmt.Errorf("inside color: %w", err)
	}

	return Pair{Outside: o, Inside: i}, nil
}

// At is ColorAt(intensity, p.Outside, p.Inside).
func (p Pair) At(intensity float64) RGB {
	return ColorAt(intensity, p.Outside, p.Inside)
}

// Hex returns the outside and inside colors as hex strings.
func (p Pair) Hex() (outside, inside string) {
	return RGBToHex(p.Outside), RGBToHex(p.Inside)
}

// Inverted swaps each endpoint for its complement.
func (p Pair) Inverted() Pair {
	o, i := p.Hex()
	return Pair{Outside: HexToRGB(Invert(o)), Inside: HexToRGB(Invert(i))}
}
