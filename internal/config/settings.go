package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xmazu/envtable/internal/storage"
)

type View string

const (
	ViewTable View = "table"
	ViewRaw   View = "raw"
)

type Settings struct {
	View          View          `yaml:"view"`
	MaskSecrets   bool          `yaml:"mask_secrets"`
	FormatOnSave  bool          `yaml:"format_on_save"`
	LogLevel      string        `yaml:"log_level"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	Audit         bool          `yaml:"audit"`
	EnvPatterns   []string      `yaml:"env_patterns"`

	file *storage.YAMLFile[Settings]
}

func DefaultSettings() Settings {
	return Settings{
		View:          ViewTable,
		MaskSecrets:   true,
		FormatOnSave:  true,
		LogLevel:      "info",
		WatchDebounce: 500 * time.Millisecond,
		Audit:         true,
		EnvPatterns:   []string{"**/.env", "**/.env.*"},
	}
}

// LoadSettings reads the settings file over the defaults. A missing file is
// not an error.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(SettingsPath())
}

func LoadSettingsFrom(path string) (*Settings, error) {
	file := storage.NewYAMLFile[Settings](path)
	s := DefaultSettings()
	if err := file.LoadInto(&s); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s.file = file
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	switch s.View {
	case ViewTable, ViewRaw:
	default:
		return fmt.Errorf("view must be %q or %q, got %q", ViewTable, ViewRaw, s.View)
	}
	if s.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	return nil
}

func (s *Settings) Save() error {
	if s.file == nil {
		s.file = storage.NewYAMLFile[Settings](SettingsPath())
	}
	return s.file.Save(s)
}

// Names lists the settings accepted by Set, in display order.
func Names() []string {
	return []string{"view", "mask_secrets", "format_on_save", "log_level", "watch_debounce", "audit", "env_patterns"}
}

// Get renders one setting for display.
func (s *Settings) Get(name string) (string, error) {
	switch name {
	case "view":
		return string(s.View), nil
	case "mask_secrets":
		return strconv.FormatBool(s.MaskSecrets), nil
	case "format_on_save":
		return strconv.FormatBool(s.FormatOnSave), nil
	case "log_level":
		return s.LogLevel, nil
	case "watch_debounce":
		return s.WatchDebounce.String(), nil
	case "audit":
		return strconv.FormatBool(s.Audit), nil
	case "env_patterns":
		return strings.Join(s.EnvPatterns, ","), nil
	}
	return "", fmt.Errorf("unknown setting %q", name)
}

// Set parses value into the named setting. env_patterns takes a comma
// separated list.
func (s *Settings) Set(name, value string) error {
	switch name {
	case "view":
		s.View = View(value)
	case "mask_secrets", "format_on_save", "audit":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		switch name {
		case "mask_secrets":
			s.MaskSecrets = b
		case "format_on_save":
			s.FormatOnSave = b
		default:
			s.Audit = b
		}
	case "log_level":
		s.LogLevel = value
	case "watch_debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s.WatchDebounce = d
	case "env_patterns":
		var patterns []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		s.EnvPatterns = patterns
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	return s.Validate()
}
