package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/config"
	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/directory"
	"github.com/zhycn/batool/internal/opener"
	"github.com/zhycn/batool/internal/search"
	"github.com/zhycn/batool/internal/theme"
)

// URLOpener hands a URL to something outside the terminal.
type URLOpener interface {
	Open(url string) error
}

type App struct {
	cfg        *config.Config
	loader     *catalog.Loader
	watcher    *catalog.Watcher
	themes     *theme.Manager
	styles     Styles
	launcher   URLOpener
	ctrl       *directory.Controller
	sink       *listSink
	keyHandler *KeyHandler

	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view   View
	cursor int
	offset int
	width  int
	height int

	searchSeq    int
	pendingQuery string

	status     string
	statusKind StatusKind
	statusSeq  int

	corpusVersion int
	indexing      bool
	loadErr       error

	renderer      *glamour.TermRenderer
	rendererWidth int
}

// NewApp wires the directory to a terminal UI. prefs may be nil, in which
// case theme changes are not persisted.
func NewApp(cfg *config.Config, prefs theme.PreferenceStore) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tui: nil config")
	}

	// Skeleton rows until the first corpus arrives.
	sink := &listSink{loading: true}
	ctrl, err := directory.New(nil, sink, cfg.DirectoryOptions())
	if err != nil {
		return nil, wrapErr("directory", err)
	}

	def, err := theme.Parse(cfg.UI.DefaultTheme)
	if err != nil {
		def = theme.Light
	}
	themes := theme.NewManager(prefs, def)

	si := textinput.New()
	si.Placeholder = cfg.UI.Placeholders.Search
	si.Prompt = "🔍 "
	si.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	app := &App{
		cfg:         cfg,
		loader:      catalog.NewLoader(cfg.Corpus.HTTPTimeout, cfg.Corpus.UserAgent),
		themes:      themes,
		styles:      NewStyles(themes.Palette()),
		launcher:    opener.NewLauncher(cfg.Opener.Command),
		ctrl:        ctrl,
		sink:        sink,
		searchInput: si,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		help:        help.New(),
		view:        ViewList,
	}
	app.keyHandler = NewKeyHandler(app, cfg.Keys)
	return app, nil
}

// Close stops the corpus watcher, if any.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Close()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.setStatus(MsgLoadingCorpus, StatusInfo, 0),
		a.loadCorpus(false),
		a.spinner.Tick,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - footerHeight - 1
		a.renderer = nil
		return a, a.observe()

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case corpusLoadedMsg:
		return a, a.handleCorpusLoaded(msg)

	case indexReadyMsg:
		return a, a.handleIndexReady(msg)

	case firstLoadMsg:
		if a.ctrl.FirstLoad(msg.generation) {
			return a, a.observe()
		}
		return a, nil

	case observeMsg:
		if a.ctrl.Observe(a.viewportState(), len(a.sink.items)) {
			return a, a.observe()
		}
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq != a.searchSeq {
			return a, nil
		}
		return a, a.applyReset(a.ctrl.SetQuery(a.pendingQuery))

	case corpusChangedMsg:
		debuglog.Infof("watch: corpus changed, reloading")
		return a, tea.Batch(a.loadCorpus(true), waitForChange(a.watcher))

	case watchErrMsg:
		text, kind := userMessage(wrapErr("watch", msg.err))
		return a, tea.Batch(a.setStatus(text, kind, errorTTL), waitForChange(a.watcher))

	case openedMsg:
		if msg.err != nil {
			text, kind := userMessage(wrapErr("open", msg.err))
			return a, a.setStatus(text, kind, errorTTL)
		}
		return a, a.setStatus(MsgOpened(msg.name), StatusSuccess, statusTTL)

	case detailsRenderedMsg:
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()
		a.view = ViewDetails
		return a, nil

	case statusClearMsg:
		a.clearStatus(msg.seq)
		return a, nil
	}
	return a, nil
}

func (a *App) handleCorpusLoaded(msg corpusLoadedMsg) tea.Cmd {
	if msg.err != nil {
		debuglog.Warnf("corpus: loading %s: %v", msg.source, msg.err)
		if !msg.reload {
			a.loadErr = msg.err
			a.sink.ShowEmpty()
		}
		text, kind := userMessage(msg.err)
		return a.setStatus(text, kind, errorTTL)
	}

	a.loadErr = nil
	a.corpusVersion++
	a.indexing = true
	cmds := []tea.Cmd{
		a.applyReset(a.ctrl.ReplaceCorpus(msg.items)),
		a.buildIndex(msg.items, a.corpusVersion),
		a.setStatus(MsgLoaded(len(msg.items), msg.source), StatusSuccess, statusTTL),
	}
	if cmd := a.watchCorpus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) handleIndexReady(msg indexReadyMsg) tea.Cmd {
	if msg.version != a.corpusVersion {
		// Built for a corpus that has since been replaced.
		return nil
	}
	a.indexing = false
	if msg.err != nil {
		text, kind := userMessage(wrapErr("index", msg.err))
		return a.setStatus(text, kind, errorTTL)
	}
	a.ctrl.SetIndex(msg.index)

	docs := len(a.ctrl.State().AllItems)
	if dc, ok := msg.index.(search.DocCounter); ok {
		docs = dc.DocCount()
	}
	cmds := []tea.Cmd{a.setStatus(MsgIndexed(a.cfg.Search.Engine, docs), StatusInfo, statusTTL)}
	if a.ctrl.State().Searching() {
		cmds = append(cmds, a.applyReset(a.ctrl.Refresh()))
	}
	return tea.Batch(cmds...)
}

func (a *App) View() string {
	if a.width == 0 {
		return a.styles.Muted.Render(MsgLoadingCorpus)
	}
	if a.view == ViewDetails {
		return lipgloss.JoinVertical(lipgloss.Left,
			a.detailsHeader(),
			a.viewport.View(),
			a.renderFooter(),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderTitle(),
		a.renderSearchBox(),
		a.renderCategoryBar(),
		a.renderList(),
		a.renderFooter(),
	)
}

func (a *App) detailsHeader() string {
	it, ok := a.selected()
	if !ok {
		return a.styles.Header.Render("› details")
	}
	title := a.styles.Header.Render(fmt.Sprintf("› %s", it.Name))
	room := a.width - lipgloss.Width(title) - 2
	if room < 10 {
		return title
	}
	return title + "  " + a.styles.Muted.Render(truncateMiddle(it.URL, room))
}
