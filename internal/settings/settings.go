// Package settings persists user preferences in config.toml inside the
// application config directory.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/franz/print-shelf/internal/util"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	// AppName names the config directory
	AppName = "PrintShelf"
	// FileName is the settings file inside the config directory
	FileName = "config.toml"
	// DefaultTheme is used when no theme was saved
	DefaultTheme = "Nord"
	// FallbackTheme replaces unknown saved themes
	FallbackTheme = "Light"
)

// Themes lists the selectable color themes
var Themes = []string{
	"Light",
	"Dark",
	"Dracula",
	"Nord",
	"Solarized Light",
	"Solarized Dark",
	"Gruvbox Light",
	"Gruvbox Dark",
	"Catppuccin Latte",
	"Catppuccin Frappé",
	"Catppuccin Macchiato",
	"Catppuccin Mocha",
	"Tokyo Night",
	"Tokyo Night Storm",
	"Tokyo Night Light",
	"Kanagawa Wave",
	"Kanagawa Dragon",
	"Kanagawa Lotus",
	"Moonfly",
	"Nightfly",
	"Oxocarbon",
	"Ferra",
}

// Settings are the persisted user preferences
type Settings struct {
	Theme      string   `toml:"theme"`
	PrintPaths []string `toml:"print_paths"`
}

// ConfigDir returns the default application config directory
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load reads the settings from dir, creating dir if needed. A missing file
// yields defaults.
func Load(fsys afero.Fs, dir string) (*Settings, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	s := &Settings{}

	data, err := afero.ReadFile(fsys, filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", util.ErrInvalidConfig, FileName, err)
		}
	}

	if s.Theme == "" {
		s.Theme = DefaultTheme
	}

	return s, nil
}

// Save writes the settings to dir
func (s *Settings) Save(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := afero.WriteFile(fsys, filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Clone returns a deep copy, used as an editable draft
func (s *Settings) Clone() *Settings {
	return &Settings{
		Theme:      s.Theme,
		PrintPaths: slices.Clone(s.PrintPaths),
	}
}

// IsTheme reports whether name is a known theme
func IsTheme(name string) bool {
	return slices.Contains(Themes, name)
}

// ActiveTheme returns the saved theme, or FallbackTheme when it is unknown
func (s *Settings) ActiveTheme() string {
	if IsTheme(s.Theme) {
		return s.Theme
	}
	return FallbackTheme
}

// SetTheme selects a known theme
func (s *Settings) SetTheme(name string) error {
	if !IsTheme(name) {
		return fmt.Errorf("%w: unknown theme %q", util.ErrInvalidConfig, name)
	}
	s.Theme = name
	return nil
}

// AddPrintPath adds a watched root. Paths are cleaned and kept unique.
func (s *Settings) AddPrintPath(path string) bool {
	path = filepath.Clean(path)
	if slices.Contains(s.PrintPaths, path) {
		return false
	}
	s.PrintPaths = append(s.PrintPaths, path)
	return true
}

// RemovePrintPath removes a watched root
func (s *Settings) RemovePrintPath(path string) bool {
	path = filepath.Clean(path)
	before := len(s.PrintPaths)
	s.PrintPaths = slices.DeleteFunc(s.PrintPaths, func(p string) bool { return p == path })
	return len(s.PrintPaths) != before
}

// HasPrintPaths reports whether any root is configured
func (s *Settings) HasPrintPaths() bool {
	return len(s.PrintPaths) > 0
}
