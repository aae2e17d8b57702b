// Package pager reveals a filtered list in fixed-size batches, driven by a
// visibility trigger on a sentinel row.
package pager

import (
	"fmt"
	"sync"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseExhausted
	// PhaseEmpty is terminal for a generation with nothing to show.
	PhaseEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseExhausted:
		return "exhausted"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// EndSignal is delivered once per generation when the last batch is shown.
type EndSignal struct {
	Displayed int
	// SuggestSearch is set when the list was long enough that narrowing it
	// with a search is worth suggesting.
	SuggestSearch bool
}

// Batch is one revealed page. Offset is the index of Items[0] within the
// generation's list; the first batch of a generation has Offset 0.
type Batch struct {
	Offset int
	Count  int
	End    *EndSignal
}

// First reports whether this batch starts a generation.
func (b Batch) First() bool { return b.Offset == 0 }

// RenderFunc paints a batch. It may call back into the pager; those calls
// are ignored while the batch is being rendered.
type RenderFunc func(Batch)

type Options struct {
	BatchSize          int
	LargeDataThreshold int
	Observer           Observer
}

func DefaultOptions() Options {
	return Options{
		BatchSize:          20,
		LargeDataThreshold: 200,
		Observer:           DefaultObserver(),
	}
}

func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.LargeDataThreshold < 0 {
		return fmt.Errorf("large data threshold cannot be negative, got %d", o.LargeDataThreshold)
	}
	return o.Observer.Validate()
}

// Pager tracks how much of the current generation has been revealed.
type Pager struct {
	mu         sync.Mutex
	opts       Options
	generation uint64
	total      int
	displayed  int
	phase      Phase
	armed      bool
	ended      bool
}

func New(opts Options) (*Pager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pager{opts: opts, phase: PhaseEmpty}, nil
}

// Reset starts a new generation over a list of total items and returns the
// generation number.
func (p *Pager) Reset(total int) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total < 0 {
		total = 0
	}
	p.generation++
	p.total = total
	p.displayed = 0
	p.ended = false
	if total == 0 {
		p.phase = PhaseEmpty
		p.armed = false
	} else {
		p.phase = PhaseIdle
		p.armed = true
	}
	return p.generation
}

// Next reveals the next batch and hands it to render. It returns false
// without calling render when a batch is already in flight, the observer is
// disarmed, or nothing remains.
func (p *Pager) Next(render RenderFunc) bool {
	p.mu.Lock()
	if p.phase != PhaseIdle || !p.armed {
		p.mu.Unlock()
		return false
	}
	p.phase = PhaseLoading

	n := p.opts.BatchSize
	if remaining := p.total - p.displayed; remaining < n {
		n = remaining
	}
	b := Batch{Offset: p.displayed, Count: n}
	p.displayed += n

	if p.displayed >= p.total && !p.ended {
		p.ended = true
		p.armed = false
		b.End = &EndSignal{
			Displayed:     p.displayed,
			SuggestSearch: p.displayed >= p.opts.LargeDataThreshold,
		}
	}
	gen := p.generation
	p.mu.Unlock()

	if render != nil {
		render(b)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// A Reset from inside render already moved the pager on.
	if p.generation == gen {
		if p.ended {
			p.phase = PhaseExhausted
		} else {
			p.phase = PhaseIdle
		}
	}
	return true
}

// Observe loads the next batch when the sentinel is visible in vp.
func (p *Pager) Observe(vp Viewport, sentinelRow int, render RenderFunc) bool {
	p.mu.Lock()
	armed := p.armed && p.phase == PhaseIdle
	obs := p.opts.Observer
	p.mu.Unlock()

	if !armed || !obs.Intersecting(vp, sentinelRow) {
		return false
	}
	return p.Next(render)
}

// SuggestSearch reports whether enough items are on screen to warrant a
// narrowing hint.
func (p *Pager) SuggestSearch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayed >= p.opts.LargeDataThreshold && p.displayed > 0
}

func (p *Pager) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

func (p *Pager) Displayed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayed
}

func (p *Pager) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Pager) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Armed reports whether the sentinel is still being observed.
func (p *Pager) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armed
}

// Loading reports whether a batch is currently being rendered.
func (p *Pager) Loading() bool {
	return p.Phase() == PhaseLoading
}
