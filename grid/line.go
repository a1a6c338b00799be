package grid

// WalkGridLine enumerates every tile the straight segment from p0 to p1
// passes through, inclusive of both endpoints, taking one orthogonal step
// at a time. At each step the axis whose fractional progress
// (0.5+steps)/total is smaller advances; ties advance the vertical axis.
// The result has exactly |dx|+|dy|+1 tiles with no repeats, so a teleport
// trail can be replayed tile by tile.
func WalkGridLine(p0, p1 Position) []Position {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	nx, sx := absSign(dx)
	ny, sy := absSign(dy)

	out := make([]Position, 0, nx+ny+1)
	cur := p0
	out = append(out, cur)
	for ix, iy := 0, 0; ix < nx || iy < ny; {
		if (1+2*ix)*ny < (1+2*iy)*nx {
			cur.X += sx
			ix++
		} else {
			cur.Y += sy
			iy++
		}
		out = append(out, cur)
	}
	return out
}

func absSign(v int) (abs, sign int) {
	if v < 0 {
		return -v, -1
	}
	if v > 0 {
		return v, 1
	}
	return 0, 0
}
