package config

import "time"

// TestConfig returns a config with short delays and no persistence paths
// that touch the user's home directory.
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database.Path = ":memory:"
	cfg.Corpus.Watch = false
	cfg.Corpus.HTTPTimeout = 5 * time.Second
	cfg.Corpus.UserAgent = "batool-test/1.0"
	cfg.Search.DebounceDelay = 10 * time.Millisecond
	cfg.UI.InitialLoadDelay = 10 * time.Millisecond
	return cfg
}
