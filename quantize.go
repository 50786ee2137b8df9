package sixheat

import (
	"math/bits"
	"strconv"
	"strings"
)

// ParseSamples parses whitespace separated integer tokens. Tokens that are not
// integers are dropped and counted.
func ParseSamples(input string) (samples []int, dropped int) {
	return ParseTokens(strings.Fields(input))
}

// ParseTokens is ParseSamples for input that has already been split.
func ParseTokens(tokens []string) (samples []int, dropped int) {
	samples = make([]int, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			dropped++
			continue
		}
		samples = append(samples, v)
	}
	return samples, dropped
}

// Bounds returns the smallest and largest sample. ok is false for an empty
// slice.
func Bounds(samples []int) (min, max int, ok bool) {
	if len(samples) == 0 {
		return 0, 0, false
	}

	min, max = samples[0], samples[0]
	for _, v := range samples[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return min, max, true
}

// MapIndex maps v in [min, max] onto a palette index in [0, colors-1],
// rounding half away from zero. All values map to 0 when min == max. colors
// is clamped to MaxColors.
func MapIndex(v, min, max, colors int) uint8 {
	if min == max || colors <= 1 {
		return 0
	}
	if colors > MaxColors {
		colors = MaxColors
	}

	// Unsigned arithmetic so that spans close to the full int range do not
	// overflow.
	span := uint64(max) - uint64(min)
	diff := uint64(v) - uint64(min)

	hi, lo := bits.Mul64(diff, uint64(colors-1))
	lo, carry := bits.Add64(lo, span/2, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, span)

	return uint8(q)
}

// Quantize maps every sample onto a palette of the given size using the
// observed minimum and maximum.
func Quantize(samples []int, colors int) []uint8 {
	min, max, ok := Bounds(samples)
	if !ok {
		return nil
	}

	result := make([]uint8, len(samples))
	for i, v := range samples {
		result[i] = MapIndex(v, min, max, colors)
	}

	return result
}
