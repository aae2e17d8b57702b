package tui

import (
	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/search"
)

type View int

const (
	ViewList View = iota
	ViewDetails
)

// corpusLoadedMsg carries a freshly loaded corpus, or the reason loading
// failed.
type corpusLoadedMsg struct {
	items  []catalog.Item
	source string
	reload bool
	err    error
}

// indexReadyMsg hands over an index built for corpus version.
type indexReadyMsg struct {
	index   search.Index
	version int
	err     error
}

type firstLoadMsg struct {
	generation uint64
}

type searchDebounceFireMsg struct {
	seq int
}

// observeMsg asks the app to re-check sentinel visibility.
type observeMsg struct{}

type corpusChangedMsg struct{}

type watchErrMsg struct {
	err error
}

type openedMsg struct {
	name string
	err  error
}

type detailsRenderedMsg struct {
	name    string
	content string
}
