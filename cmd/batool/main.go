package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/config"
	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/directory"
	"github.com/zhycn/batool/internal/filter"
	"github.com/zhycn/batool/internal/pager"
	"github.com/zhycn/batool/internal/search"
	"github.com/zhycn/batool/internal/storage"
	"github.com/zhycn/batool/internal/theme"
	"github.com/zhycn/batool/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	corpusPath string
	quiet      bool
	debug      bool

	listCategory string
	listSearch   string
	listAll      bool
)

var rootCmd = &cobra.Command{
	Use:           tui.AppName,
	Short:         tui.AppDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
		fmt.Fprintln(out, tui.AppDescription)
		fmt.Fprintln(out, tui.RepoURL)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print tools without starting the interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		items, err := loadItems(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return printList(cmd.OutOrStdout(), cfg, items, listCategory, listSearch, listAll)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print categories with tool counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		items, err := loadItems(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		printCategories(cmd.OutOrStdout(), items)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to configuration file")
	pf.StringVar(&dbPath, "db", "", "path to preferences database (overrides config)")
	pf.StringVar(&corpusPath, "corpus", "", "tool list file or URL (overrides config)")
	pf.BoolVar(&debug, "debug", false, "write debug logs")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "skip startup banner")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", filter.All, "only tools in this category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "only tools matching this query")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "print every match instead of the first page")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, listCmd, categoriesCmd)
}

func main() {
	err := rootCmd.Execute()
	_ = debuglog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if corpusPath != "" {
		cfg.Corpus.Source = corpusPath
	}
	if debug {
		cfg.Log.Level = debuglog.LevelDebug.String()
	}
	cfg.ExpandPaths()

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return cfg, nil
}

func corpusSource(cfg *config.Config) string {
	if s := strings.TrimSpace(cfg.Corpus.Source); s != "" {
		return s
	}
	return catalog.BuiltinSource
}

func loadItems(ctx context.Context, cfg *config.Config) ([]catalog.Item, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Corpus.HTTPTimeout)
	defer cancel()

	source := corpusSource(cfg)
	loader := catalog.NewLoader(cfg.Corpus.HTTPTimeout, cfg.Corpus.UserAgent)
	items, err := loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	return items, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Without a database the theme still works, it just is not remembered.
	var prefs theme.PreferenceStore
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		debuglog.Warnf("preferences unavailable: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		defer store.Close()
		prefs = store
	}

	app, err := tui.NewApp(cfg, prefs)
	if err != nil {
		return err
	}
	defer app.Close()

	if !quiet {
		palette := theme.NewManager(prefs, theme.Name(cfg.UI.DefaultTheme)).Palette()
		tui.ShowBanner(cmd.OutOrStdout(), Version, palette)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// textSink collects what the directory controller renders so the list
// command can print it.
type textSink struct {
	items []catalog.Item
	end   *pager.EndSignal
}

func (s *textSink) RenderBatch(items []catalog.Item, first bool) {
	if first {
		s.items = nil
	}
	s.items = append(s.items, items...)
}

func (s *textSink) ShowEmpty()   { s.items = nil }
func (s *textSink) ShowLoading() {}
func (s *textSink) ShowEnd(end pager.EndSignal) {
	s.end = &end
}

func printList(w io.Writer, cfg *config.Config, items []catalog.Item, category, query string, all bool) error {
	sink := &textSink{}
	ctrl, err := directory.New(items, sink, cfg.DirectoryOptions())
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) != "" {
		idx, err := search.Build(cfg.Search.Engine, items, cfg.SearchOptions())
		if err != nil {
			return err
		}
		ctrl.SetIndex(idx)
	}

	ctrl.SetQuery(query)
	r := ctrl.SetCategory(category)
	if r.Empty {
		fmt.Fprintln(w, cfg.UI.Placeholders.EmptyState)
		return nil
	}
	ctrl.FirstLoad(r.Generation)
	if all {
		for ctrl.LoadNext() {
		}
	}

	rows := make([][]string, 0, len(sink.items))
	for _, it := range sink.items {
		rows = append(rows, []string{it.Name, it.CategoryLabel(), it.URL})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "CATEGORY", "URL").
		Rows(rows...)
	fmt.Fprintln(w, t.String())

	st := ctrl.State()
	switch {
	case sink.end != nil:
		fmt.Fprintln(w, tui.MsgEnd(sink.end.Displayed, sink.end.SuggestSearch))
	default:
		fmt.Fprintf(w, "%d of %d shown, use --all for the rest\n", st.DisplayedCount, len(st.FilteredItems))
	}
	return nil
}

func printCategories(w io.Writer, items []catalog.Item) {
	counts := filter.Counts(items)
	cats := filter.Categories(items)
	sort.Strings(cats)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("CATEGORY", "TOOLS")
	t.Row(filter.All, fmt.Sprint(counts[filter.All]))
	for _, c := range cats {
		t.Row(c, fmt.Sprint(counts[c]))
	}
	fmt.Fprintln(w, t.String())
	if n := uncategorized(items); n > 0 {
		fmt.Fprintf(w, "%d uncategorized (shown under %s only)\n", n, filter.All)
	}
}

func uncategorized(items []catalog.Item) int {
	var n int
	for _, it := range items {
		if it.Uncategorized() {
			n++
		}
	}
	return n
}
