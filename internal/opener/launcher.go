// Package opener hands tool URLs to the desktop's browser.
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/validation"
)

// urlPlaceholder in a configured command is replaced by the URL. Without
// it the URL is appended as the last argument.
const urlPlaceholder = "{url}"

var ErrNoOpener = errors.New("no application found to open URLs")

type Launcher struct {
	command []string
	goos    string

	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// NewLauncher uses command when set, otherwise the platform default.
func NewLauncher(command string) *Launcher {
	return &Launcher{
		command:  strings.Fields(command),
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// startDetached starts a GUI program without waiting on it in the caller.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Open launches the browser on rawURL. Only http and https URLs are accepted.
func (l *Launcher) Open(rawURL string) error {
	if !validation.HasHTTPScheme(rawURL) {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}

	argv, err := l.commandFor(rawURL)
	if err != nil {
		return err
	}

	debuglog.WithFields(map[string]any{"cmd": argv[0], "url": rawURL}).Debugf("opening tool")
	if err := l.start(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return nil
}

func (l *Launcher) commandFor(rawURL string) ([]string, error) {
	if len(l.command) > 0 {
		argv := make([]string, 0, len(l.command)+1)
		replaced := false
		for _, part := range l.command {
			if strings.Contains(part, urlPlaceholder) {
				part = strings.ReplaceAll(part, urlPlaceholder, rawURL)
				replaced = true
			}
			argv = append(argv, part)
		}
		if !replaced {
			argv = append(argv, rawURL)
		}
		return argv, nil
	}

	switch l.goos {
	case "darwin":
		return []string{"open", rawURL}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", rawURL}, nil
	default:
		if name := l.findCommand("xdg-open", "gio", "sensible-browser", "firefox"); name != "" {
			if name == "gio" {
				return []string{"gio", "open", rawURL}, nil
			}
			return []string{name, rawURL}, nil
		}
		return nil, ErrNoOpener
	}
}

func (l *Launcher) findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := l.lookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
