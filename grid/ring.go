package grid

import (
	"math"
	"sort"
)

// RingOutline enumerates the discrete circle outline of the given radius
// around center using the midpoint circle algorithm, de-duplicated and
// sorted by angle around the center, ascending in (-pi, pi]. Sequential
// consumers therefore sweep the ring in one angular direction. A radius of
// zero or less yields just the center tile.
func RingOutline(center Position, radius int) []Position {
	if radius <= 0 {
		return []Position{center}
	}

	seen := make(map[Position]struct{}, radius*8)
	ring := make([]Position, 0, radius*8)
	push := func(dx, dy int) {
		p := Position{X: center.X + dx, Y: center.Y + dy}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		ring = append(ring, p)
	}

	x, y := radius, 0
	decision := 1 - radius
	for y <= x {
		push(x, y)
		push(y, x)
		push(-y, x)
		push(-x, y)
		push(-x, -y)
		push(-y, -x)
		push(y, -x)
		push(x, -y)
		y++
		if decision <= 0 {
			decision += 2*y + 1
		} else {
			x--
			decision += 2*(y-x) + 1
		}
	}

	sort.SliceStable(ring, func(i, j int) bool {
		return ringAngle(center, ring[i]) < ringAngle(center, ring[j])
	})
	return ring
}

func ringAngle(center, p Position) float64 {
	return math.Atan2(float64(p.Y-center.Y), float64(p.X-center.X))
}
