package concurrent

// RouteQueryJobItem satu query shortest path di batch, koordinat skala 0-100.
type RouteQueryJobItem struct {
	Index  int
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

type JobI interface {
	RouteQueryJobItem
}

type JobFunc[T JobI, G any] func(job T) G
