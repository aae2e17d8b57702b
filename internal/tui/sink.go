package tui

import (
	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/pager"
)

// listSink keeps what the controller asked to be painted. The App reads it
// in View; nothing is drawn here directly.
type listSink struct {
	items   []catalog.Item
	loading bool
	empty   bool
	end     *pager.EndSignal
	batches int
}

func (s *listSink) RenderBatch(items []catalog.Item, first bool) {
	if first {
		s.items = nil
		s.end = nil
	}
	s.items = append(s.items, items...)
	s.loading = false
	s.empty = false
	s.batches++
}

func (s *listSink) ShowEmpty() {
	s.items = nil
	s.end = nil
	s.loading = false
	s.empty = true
}

func (s *listSink) ShowLoading() {
	s.items = nil
	s.end = nil
	s.loading = true
	s.empty = false
}

func (s *listSink) ShowEnd(end pager.EndSignal) {
	s.end = &end
}

// rowCount is the number of selectable rows: every item plus the end
// message once it is shown.
func (s *listSink) rowCount() int {
	if s.end != nil {
		return len(s.items) + 1
	}
	return len(s.items)
}
