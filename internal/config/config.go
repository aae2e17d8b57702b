package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/directory"
	"github.com/zhycn/batool/internal/pager"
	"github.com/zhycn/batool/internal/search"
	"github.com/zhycn/batool/internal/theme"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Corpus   CorpusConfig   `mapstructure:"corpus"`
	Search   SearchConfig   `mapstructure:"search"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Opener   OpenerConfig   `mapstructure:"opener"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CorpusConfig struct {
	// Source is a file path or http(s) URL. Empty means the built-in list.
	Source      string        `mapstructure:"source"`
	Watch       bool          `mapstructure:"watch"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type SearchConfig struct {
	Engine             string        `mapstructure:"engine"`
	Threshold          float64       `mapstructure:"threshold"`
	MinMatchCharLength int           `mapstructure:"min_match_char_length"`
	IgnoreLocation     bool          `mapstructure:"ignore_location"`
	DebounceDelay      time.Duration `mapstructure:"debounce_delay"`
	CacheSize          int           `mapstructure:"cache_size"`
	Weights            WeightConfig  `mapstructure:"weights"`
}

type WeightConfig struct {
	Name        float64 `mapstructure:"name"`
	Description float64 `mapstructure:"description"`
	Category    float64 `mapstructure:"category"`
	Tags        float64 `mapstructure:"tags"`
}

type UIConfig struct {
	DefaultTheme       string            `mapstructure:"default_theme"`
	ItemsPerPage       int               `mapstructure:"items_per_page"`
	LargeDataThreshold int               `mapstructure:"large_data_threshold"`
	SkeletonCount      int               `mapstructure:"skeleton_count"`
	InitialLoadDelay   time.Duration     `mapstructure:"initial_load_delay"`
	Observer           ObserverConfig    `mapstructure:"observer"`
	Placeholders       PlaceholderConfig `mapstructure:"placeholders"`
}

type ObserverConfig struct {
	RootMargin int     `mapstructure:"root_margin"`
	Threshold  float64 `mapstructure:"threshold"`
}

type PlaceholderConfig struct {
	Search     string `mapstructure:"search"`
	EmptyState string `mapstructure:"empty_state"`
}

// KeyConfig holds key bindings. A value may list alternatives separated by
// commas, e.g. "ctrl+k,/".
type KeyConfig struct {
	Search       string `mapstructure:"search"`
	Clear        string `mapstructure:"clear"`
	ToggleTheme  string `mapstructure:"toggle_theme"`
	NextCategory string `mapstructure:"next_category"`
	PrevCategory string `mapstructure:"prev_category"`
	Open         string `mapstructure:"open"`
	Details      string `mapstructure:"details"`
	Reload       string `mapstructure:"reload"`
	Quit         string `mapstructure:"quit"`
}

type OpenerConfig struct {
	// Command overrides the platform opener. "{url}" marks where the URL
	// goes; otherwise it is appended.
	Command string `mapstructure:"command"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultPath is ~/.config/batool/config.toml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "batool", "config.toml")
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".batool", "batool.db"),
			Timeout: 1 * time.Second,
		},
		Corpus: CorpusConfig{
			Watch:       true,
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "batool/1.0 (https://github.com/zhycn/batool)",
		},
		Search: SearchConfig{
			Engine:             search.EngineFuzzy,
			Threshold:          0.4,
			MinMatchCharLength: 1,
			IgnoreLocation:     true,
			DebounceDelay:      300 * time.Millisecond,
			CacheSize:          128,
			Weights: WeightConfig{
				Name:        2,
				Description: 1.5,
				Category:    1,
				Tags:        1.2,
			},
		},
		UI: UIConfig{
			DefaultTheme:       string(theme.Light),
			ItemsPerPage:       20,
			LargeDataThreshold: 200,
			SkeletonCount:      5,
			InitialLoadDelay:   300 * time.Millisecond,
			Observer: ObserverConfig{
				RootMargin: 3,
				Threshold:  0.1,
			},
			Placeholders: PlaceholderConfig{
				Search:     "Search tools...",
				EmptyState: "No matching tools found",
			},
		},
		Keys: KeyConfig{
			Search:       "ctrl+k,/",
			Clear:        "esc",
			ToggleTheme:  "ctrl+t",
			NextCategory: "tab",
			PrevCategory: "shift+tab",
			Open:         "enter",
			Details:      "ctrl+d",
			Reload:       "ctrl+r",
			Quit:         "ctrl+c",
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// flatten lists every config key with its value, durations as strings.
func flatten(c *Config) map[string]any {
	return map[string]any{
		"database.path":    c.Database.Path,
		"database.timeout": c.Database.Timeout.String(),

		"corpus.source":       c.Corpus.Source,
		"corpus.watch":        c.Corpus.Watch,
		"corpus.http_timeout": c.Corpus.HTTPTimeout.String(),
		"corpus.user_agent":   c.Corpus.UserAgent,

		"search.engine":                c.Search.Engine,
		"search.threshold":             c.Search.Threshold,
		"search.min_match_char_length": c.Search.MinMatchCharLength,
		"search.ignore_location":       c.Search.IgnoreLocation,
		"search.debounce_delay":        c.Search.DebounceDelay.String(),
		"search.cache_size":            c.Search.CacheSize,
		"search.weights.name":          c.Search.Weights.Name,
		"search.weights.description":   c.Search.Weights.Description,
		"search.weights.category":      c.Search.Weights.Category,
		"search.weights.tags":          c.Search.Weights.Tags,

		"ui.default_theme":            c.UI.DefaultTheme,
		"ui.items_per_page":           c.UI.ItemsPerPage,
		"ui.large_data_threshold":     c.UI.LargeDataThreshold,
		"ui.skeleton_count":           c.UI.SkeletonCount,
		"ui.initial_load_delay":       c.UI.InitialLoadDelay.String(),
		"ui.observer.root_margin":     c.UI.Observer.RootMargin,
		"ui.observer.threshold":       c.UI.Observer.Threshold,
		"ui.placeholders.search":      c.UI.Placeholders.Search,
		"ui.placeholders.empty_state": c.UI.Placeholders.EmptyState,

		"keys.search":        c.Keys.Search,
		"keys.clear":         c.Keys.Clear,
		"keys.toggle_theme":  c.Keys.ToggleTheme,
		"keys.next_category": c.Keys.NextCategory,
		"keys.prev_category": c.Keys.PrevCategory,
		"keys.open":          c.Keys.Open,
		"keys.details":       c.Keys.Details,
		"keys.reload":        c.Keys.Reload,
		"keys.quit":          c.Keys.Quit,

		"opener.command": c.Opener.Command,

		"log.level": c.Log.Level,
		"log.file":  c.Log.File,
	}
}

// Load reads configPath, or config.toml from ~/.config/batool and the
// working directory when configPath is empty. BATOOL_* environment
// variables override file values (BATOOL_UI_ITEMS_PER_PAGE and so on).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BATOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.ExpandPaths()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		debuglog.Infof("config loaded from %s", used)
	}
	return &config, nil
}

// Validate checks every value a component would reject at construction.
func (c *Config) Validate() error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	if c.Database.Path == "" {
		add(errors.New("database.path cannot be empty"))
	}
	if c.Database.Timeout < 0 {
		add(fmt.Errorf("database.timeout cannot be negative, got %s", c.Database.Timeout))
	}
	if c.Corpus.HTTPTimeout < 0 {
		add(fmt.Errorf("corpus.http_timeout cannot be negative, got %s", c.Corpus.HTTPTimeout))
	}
	if !search.ValidEngine(c.Search.Engine) {
		add(fmt.Errorf("search.engine %q is not one of fuzzy, bleve", c.Search.Engine))
	}
	if c.Search.DebounceDelay < 0 {
		add(fmt.Errorf("search.debounce_delay cannot be negative, got %s", c.Search.DebounceDelay))
	}
	add(c.SearchOptions().Validate())
	if _, err := theme.Parse(c.UI.DefaultTheme); err != nil {
		add(fmt.Errorf("ui.default_theme: %w", err))
	}
	if c.UI.SkeletonCount < 0 {
		add(fmt.Errorf("ui.skeleton_count cannot be negative, got %d", c.UI.SkeletonCount))
	}
	add(c.DirectoryOptions().Validate())
	if !debuglog.ValidLevel(c.Log.Level) {
		add(fmt.Errorf("log.level %q is not one of debug, info, warn, error, off", c.Log.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) SearchOptions() search.Options {
	return search.Options{
		Weights: search.Weights{
			Name:        c.Search.Weights.Name,
			Description: c.Search.Weights.Description,
			Category:    c.Search.Weights.Category,
			Tags:        c.Search.Weights.Tags,
		},
		Threshold:          c.Search.Threshold,
		IgnoreLocation:     c.Search.IgnoreLocation,
		MinMatchCharLength: c.Search.MinMatchCharLength,
		CacheSize:          c.Search.CacheSize,
	}
}

func (c *Config) DirectoryOptions() directory.Options {
	return directory.Options{
		Pager: pager.Options{
			BatchSize:          c.UI.ItemsPerPage,
			LargeDataThreshold: c.UI.LargeDataThreshold,
			Observer: pager.Observer{
				RootMargin:     c.UI.Observer.RootMargin,
				Threshold:      c.UI.Observer.Threshold,
				SentinelHeight: 1,
			},
		},
		InitialLoadDelay: c.UI.InitialLoadDelay,
	}
}

// expandPath expands ~ to the home directory and makes path absolute.
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// ExpandPaths resolves ~ and relative paths. Remote and built-in corpus
// sources are left alone. Call it again after overriding paths from flags.
func (c *Config) ExpandPaths() {
	if c.Database.Path != ":memory:" {
		c.Database.Path = expandPath(c.Database.Path)
	}
	c.Log.File = expandPath(c.Log.File)
	if src := c.Corpus.Source; src != "" && src != catalog.BuiltinSource && !catalog.IsRemote(src) {
		c.Corpus.Source = expandPath(src)
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, value := range flatten(config) {
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
