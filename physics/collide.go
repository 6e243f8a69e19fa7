package physics

import (
	"math"

	"github.com/beka-birhanu/tilt-maze/maze"
)

// collideWall resolves one wall segment against the tentative position of b.
//
// The work happens in the wall's frame where the segment runs along the x axis.
// Vertical segments are handled by mirroring the ball across the diagonal, which
// keeps rolling and clamping symmetric between the two orientations.
func collideWall(b Ball, w maze.Wall) Ball {
	if w.Horizontal {
		return collideRun(b, w.X, w.X+w.Length, w.Y)
	}
	return mirror(collideRun(mirror(b), w.Y, w.Y+w.Length, w.X))
}

// collideRun resolves a segment lying on the line y = across from x = from to x = to.
func collideRun(b Ball, from, to, across float64) Ball {
	if b.nextY+BallRadius < across-WallHalfWidth || b.nextY-BallRadius > across+WallHalfWidth {
		return b
	}

	if b.nextX+BallRadius >= from-WallHalfWidth && b.nextX < from {
		b = collideCap(b, from, across)
	}
	if b.nextX-BallRadius <= to+WallHalfWidth && b.nextX > to {
		b = collideCap(b, to, across)
	}
	if b.nextX >= from && b.nextX <= to {
		b = collideBody(b, across)
	}
	return b
}

// collideBody pushes the ball off the wall's long side and bounces it with a third
// of its speed.
func collideBody(b Ball, across float64) Ball {
	if b.nextY < across {
		b.nextY = across - contactDistance
	} else {
		b.nextY = across + contactDistance
	}
	b.VY = -b.VY / 3
	return b
}

// collideCap rolls the ball around a rounded wall end. The ball is moved to the
// closest point it may occupy, then slides along the cap by the arc its tangential
// speed covers. The normal component of its velocity is dropped.
func collideCap(b Ball, cx, cy float64) Ball {
	if distance(cx, cy, b.nextX, b.nextY) >= contactDistance {
		return b
	}

	nx, ny := capNormal(b, cx, cy)
	tx, ty := -ny, nx
	vt := b.VX*tx + b.VY*ty

	angle := math.Atan2(ny, nx) + vt/contactDistance
	b.nextX = cx + contactDistance*math.Cos(angle)
	b.nextY = cy + contactDistance*math.Sin(angle)
	b.VX = vt * tx
	b.VY = vt * ty
	return b
}

// capNormal is the unit vector from the cap center toward the ball.
func capNormal(b Ball, cx, cy float64) (float64, float64) {
	candidates := [][2]float64{
		{b.nextX - cx, b.nextY - cy},
		{b.X - cx, b.Y - cy},
		{-b.VX, -b.VY},
	}
	for _, c := range candidates {
		if l := math.Hypot(c[0], c[1]); l > 0 {
			return c[0] / l, c[1] / l
		}
	}
	return 0, -1
}

// mirror swaps the x and y axes of a ball.
func mirror(b Ball) Ball {
	b.X, b.Y = b.Y, b.X
	b.VX, b.VY = b.VY, b.VX
	b.nextX, b.nextY = b.nextY, b.nextX
	return b
}

// collideBalls exchanges the state of every overlapping pair, pairs visited in
// index order.
func collideBalls(balls []Ball) {
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			a, b := &balls[i], &balls[j]
			if distance(a.nextX, a.nextY, b.nextX, b.nextY) < BallSize {
				swapState(a, b)
			}
		}
	}
}
