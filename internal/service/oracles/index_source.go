package oracles

import "math/rand/v2"

// IndexSource picks index partitions. Production uses math/rand; tests inject
// a fixed sequence.
type IndexSource interface {
	Intn(n int) int
}

type randomIndexSource struct{}

func (randomIndexSource) Intn(n int) int {
	return rand.IntN(n)
}

func NewRandomIndexSource() IndexSource {
	return randomIndexSource{}
}

// pickIndexes draws count distinct indexes below space. A collision probes
// upward to the next free index so a degenerate source still terminates.
func pickIndexes(src IndexSource, space, count int) []uint8 {
	picked := make([]uint8, 0, count)
	taken := make(map[int]bool, count)
	for len(picked) < count {
		idx := src.Intn(space) % space
		for taken[idx] {
			idx = (idx + 1) % space
		}
		taken[idx] = true
		picked = append(picked, uint8(idx))
	}
	return picked
}
