package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"studyhub/internal/timer"
)

const timerDefaultsFileName = "timer.yaml"

type yamlTimerSettings struct {
	FocusMinutes      int   `yaml:"focus_minutes"`
	ShortBreakMinutes int   `yaml:"short_break_minutes"`
	LongBreakMinutes  int   `yaml:"long_break_minutes"`
	LongBreakInterval int   `yaml:"long_break_interval"`
	AutoStartBreaks   *bool `yaml:"auto_start_breaks,omitempty"`
	AutoStartFocus    *bool `yaml:"auto_start_focus,omitempty"`
}

// LoadTimerDefaults reads timer settings from a YAML file. Missing fields and
// non-positive values keep the built-in defaults; an empty path or a missing
// file yields the defaults unchanged.
func LoadTimerDefaults(path string) (timer.Settings, error) {
	settings := timer.DefaultSettings()
	if path == "" {
		return settings, nil
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read timer defaults: %w", err)
	}

	var fileData yamlTimerSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse timer defaults yaml: %w", err)
	}

	applyYamlTimerSettings(&settings, fileData)
	return settings, nil
}

// SaveTimerDefaults writes settings to path, creating parent directories.
func SaveTimerDefaults(path string, settings timer.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create timer defaults directory: %w", err)
	}

	autoBreaks := settings.AutoStartBreaks
	autoFocus := settings.AutoStartFocus
	fileData := yamlTimerSettings{
		FocusMinutes:      settings.FocusSeconds / 60,
		ShortBreakMinutes: settings.ShortBreakSeconds / 60,
		LongBreakMinutes:  settings.LongBreakSeconds / 60,
		LongBreakInterval: settings.LongBreakInterval,
		AutoStartBreaks:   &autoBreaks,
		AutoStartFocus:    &autoFocus,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal timer defaults yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write timer defaults: %w", err)
	}
	return nil
}

// DefaultTimerDefaultsPath resolves the per-user settings file for appName.
func DefaultTimerDefaultsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, timerDefaultsFileName), nil
}

func applyYamlTimerSettings(settings *timer.Settings, fileData yamlTimerSettings) {
	if fileData.FocusMinutes > 0 {
		settings.FocusSeconds = fileData.FocusMinutes * 60
	}
	if fileData.ShortBreakMinutes > 0 {
		settings.ShortBreakSeconds = fileData.ShortBreakMinutes * 60
	}
	if fileData.LongBreakMinutes > 0 {
		settings.LongBreakSeconds = fileData.LongBreakMinutes * 60
	}
	if fileData.LongBreakInterval > 0 {
		settings.LongBreakInterval = fileData.LongBreakInterval
	}
	if fileData.AutoStartBreaks != nil {
		settings.AutoStartBreaks = *fileData.AutoStartBreaks
	}
	if fileData.AutoStartFocus != nil {
		settings.AutoStartFocus = *fileData.AutoStartFocus
	}
}
