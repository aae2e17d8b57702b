package pager

import "fmt"

// Viewport is the visible window of a scrolled list, in rows.
type Viewport struct {
	Offset int
	Height int
}

// Observer decides whether the sentinel row counts as visible. The viewport
// is grown by RootMargin rows at both ends so the next batch is requested
// slightly before the sentinel scrolls in.
type Observer struct {
	RootMargin int
	// Threshold is the minimum visible fraction of the sentinel.
	Threshold float64
	// SentinelHeight is the number of rows the sentinel occupies.
	SentinelHeight int
}

func DefaultObserver() Observer {
	return Observer{RootMargin: 3, Threshold: 0.1, SentinelHeight: 1}
}

func (o Observer) Validate() error {
	if o.RootMargin < 0 {
		return fmt.Errorf("observer root margin cannot be negative, got %d", o.RootMargin)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("observer threshold must be within [0,1], got %v", o.Threshold)
	}
	if o.SentinelHeight < 0 {
		return fmt.Errorf("sentinel height cannot be negative, got %d", o.SentinelHeight)
	}
	return nil
}

// Ratio is the fraction of the sentinel inside the expanded viewport.
func (o Observer) Ratio(vp Viewport, sentinelRow int) float64 {
	h := o.SentinelHeight
	if h <= 0 {
		h = 1
	}
	top := vp.Offset - o.RootMargin
	bottom := vp.Offset + vp.Height + o.RootMargin

	start, end := sentinelRow, sentinelRow+h
	if start < top {
		start = top
	}
	if end > bottom {
		end = bottom
	}
	if end <= start {
		return 0
	}
	return float64(end-start) / float64(h)
}

// Intersecting reports whether the sentinel is visible enough to trigger.
func (o Observer) Intersecting(vp Viewport, sentinelRow int) bool {
	r := o.Ratio(vp, sentinelRow)
	return r > 0 && r >= o.Threshold
}
