package coords

// WithinRadius returns the elements of items whose position lies within
// radius of center, preserving order.
func WithinRadius[T any](items []T, center *Coordinates, radius float32, pos func(T) *Coordinates) []T {
	var out []T
	for _, it := range items {
		if d := center.Distance(pos(it)); d <= radius {
			out = append(out, it)
		}
	}
	return out
}

// Obstacle is a circle in the XY plane.
type Obstacle struct {
	X, Y, Radius float32
}

// LineOfSight reports whether the segment from a to b in the XY plane
// avoids every obstacle. Coincident endpoints always have line of sight.
func LineOfSight(a, b *Coordinates, obstacles []Obstacle) bool {
	ax, ay := a.XY()
	bx, by := b.XY()
	start, end := FromValues(ax, ay), FromValues(bx, by)
	dir, ok := start.DirectionTo(end)
	if !ok {
		return true
	}
	length := start.Distance(end)
	dx, dy := dir.XY()
	for _, o := range obstacles {
		t := dx*(o.X-ax) + dy*(o.Y-ay)
		if t < 0 || t > length {
			continue
		}
		closest := FromValues(ax+t*dx, ay+t*dy)
		if closest.Distance(FromValues(o.X, o.Y)) <= o.Radius {
			return false
		}
	}
	return true
}
