package plane

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownRegion = errors.New("unknown region")

// Classic regions / landmarks in the Mandelbrot set.
var (
	// SeahorseValley has dense filaments and repeating "seahorse" curls.
	SeahorseValley = Bounds{ReMin: -0.8, ReMax: -0.7, ImMin: 0.05, ImMax: 0.15}

	// ElephantValley is a large bulb with trunk-like tendrils.
	ElephantValley = Bounds{ReMin: -1.85, ReMax: -1.75, ImMin: -0.10, ImMax: -0.02}

	// SpiralMinibrot is a small Mandelbrot copy with tight spiral arms.
	SpiralMinibrot = Bounds{ReMin: -0.7435, ReMax: -0.7420, ImMin: 0.1310, ImMax: 0.1325}

	// TripleSpiral has threefold symmetric spirals.
	TripleSpiral = Bounds{ReMin: -0.7480, ReMax: -0.7450, ImMin: 0.0950, ImMax: 0.0980}

	// ValleyOfTheDragon has deep, highly detailed spiral filaments.
	ValleyOfTheDragon = Bounds{ReMin: -0.7400, ReMax: -0.7350, ImMin: 0.1800, ImMax: 0.1850}
)

var regions = map[string]Bounds{
	"default":              Default,
	"seahorse-valley":      SeahorseValley,
	"elephant-valley":      ElephantValley,
	"spiral-minibrot":      SpiralMinibrot,
	"triple-spiral":        TripleSpiral,
	"valley-of-the-dragon": ValleyOfTheDragon,
}

// Lookup returns the named region. Names are case-insensitive.
func Lookup(name string) (Bounds, error) {
	b, ok := regions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownRegion, name, strings.Join(Regions(), ", "))
	}

	return b, nil
}

// Regions lists the names accepted by Lookup.
func Regions() []string {
	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
