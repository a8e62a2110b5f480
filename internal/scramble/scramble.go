// Package scramble generates random move sequences for NxNxN cubes.
package scramble

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var ErrCubeSize = errors.New("cube size must be at least 2")
var ErrLength = errors.New("scramble length must be non-negative")

var faces = [6]byte{'U', 'D', 'R', 'L', 'F', 'B'}
var suffixes = [3]string{"", "'", "2"}

// DefaultLength is the WCA-style move count for a cube size.
func DefaultLength(size int) int {
	switch size {
	case 2:
		return 9
	case 3:
		return 20
	case 4:
		return 40
	case 5:
		return 60
	case 6:
		return 80
	case 7:
		return 100
	default:
		return size * 20
	}
}

type Generator struct {
	rng *rand.Rand
}

func New() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic generator.
func NewSeeded(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns space separated moves. A nil length uses DefaultLength.
// A Generator is not safe for concurrent use.
func (g *Generator) Generate(size int, length *int) (string, error) {
	if size < 2 {
		return "", fmt.Errorf("%w: got %d", ErrCubeSize, size)
	}
	n := DefaultLength(size)
	if length != nil {
		n = *length
	}
	if n < 0 {
		return "", fmt.Errorf("%w: got %d", ErrLength, n)
	}
	if size == 2 {
		return g.twoByTwo(n), nil
	}

	moves := make([]string, 0, n)
	// Axes of the previous two moves; a third move on the same axis is redundant.
	prev, prevPrev := -1, -1
	for i := 0; i < n; i++ {
		var axis int
		for {
			axis = g.rng.IntN(3)
			if axis != prev || axis != prevPrev {
				break
			}
		}
		prevPrev, prev = prev, axis

		face := faces[axis*2+g.rng.IntN(2)]
		suffix := suffixes[g.rng.IntN(len(suffixes))]

		var move string
		switch {
		case size > 3 && i < n-1 && g.rng.IntN(3) == 0:
			slice := 1 + g.rng.IntN(size/2-1)
			move = fmt.Sprintf("%d%c%s", slice+1, face, suffix)
		case size > 3 && g.rng.IntN(10) < 3:
			width := 2 + g.rng.IntN(min(size, 4)-2)
			move = fmt.Sprintf("%d%cw%s", width, face, suffix)
		default:
			move = string(face) + suffix
		}
		moves = append(moves, move)
	}
	return strings.Join(moves, " "), nil
}

func (g *Generator) twoByTwo(n int) string {
	moves := make([]string, 0, n)
	last := -1
	for i := 0; i < n; i++ {
		axis := g.rng.IntN(3)
		for axis == last {
			axis = g.rng.IntN(3)
		}
		last = axis
		moves = append(moves, string(faces[axis*2+g.rng.IntN(2)])+suffixes[g.rng.IntN(len(suffixes))])
	}
	return strings.Join(moves, " ")
}
