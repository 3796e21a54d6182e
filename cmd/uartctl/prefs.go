package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// prefsFile persists operator UI preferences between runs. It is separate
// from the runtime config: losing it costs convenience, never correctness.
type prefsFile struct {
	ClearScreenAfterCommand bool   `toml:"clear_screen_after_command"`
	LastPort                string `toml:"last_port"`
}

func (a *App) loadPrefs() error {
	if err := ensureFile(a.prefsPath); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(a.prefsPath, &a.prefs); err != nil {
		return err
	}
	a.clearScreen = a.prefs.ClearScreenAfterCommand
	return nil
}

func (a *App) savePrefs() error {
	a.prefs.ClearScreenAfterCommand = a.clearScreen
	buf := strings.Builder{}
	if err := toml.NewEncoder(&buf).Encode(a.prefs); err != nil {
		return err
	}
	return os.WriteFile(a.prefsPath, []byte(buf.String()), 0o644)
}

// ensureFile creates a missing file and parent directory for config
// bootstrapping.
func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
