package passport

import (
	"strconv"
	"unicode/utf16"
)

// seededRand hashes seed+index into [0,1) with the web client's 32-bit
// multiply-and-fold hash, iterating UTF-16 code units like charCodeAt.
func seededRand(seed string, index int) float64 {
	var h int32
	for _, c := range utf16.Encode([]rune(seed + strconv.Itoa(index))) {
		h = 31*h + int32(c)
	}
	u := uint32(h)
	u = (u ^ (u >> 16)) * 0x45d9f3b
	u = (u ^ (u >> 13)) * 0x45d9f3b
	u ^= u >> 16
	return float64(u) / 4294967296.0
}

// drawer hands out seeded values for one vehicle in call order.
type drawer struct {
	seed string
	next int
}

func newDrawer(seed string) *drawer {
	return &drawer{seed: seed}
}

func (d *drawer) float() float64 {
	v := seededRand(d.seed, d.next)
	d.next++
	return v
}

// intn returns a value in [0, n).
func (d *drawer) intn(n int) int {
	if n <= 0 {
		d.next++
		return 0
	}
	return int(d.float() * float64(n))
}

func (d *drawer) chance(p float64) bool {
	return d.float() < p
}
