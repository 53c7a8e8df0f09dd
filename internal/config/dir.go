package config

import (
	"os"
	"path/filepath"
)

const (
	ConfigDirEnv     = "ENVTABLE_CONFIG_DIR"
	ConfigSubdir     = "envtable"
	SettingsFileName = "config.yaml"
	LogFileName      = "envtable.log"
)

func ConfigDir() string {
	if d := os.Getenv(ConfigDirEnv); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return filepath.Join(".", ConfigSubdir)
	}
	return filepath.Join(home, ".config", ConfigSubdir)
}

func SettingsPath() string {
	return filepath.Join(ConfigDir(), SettingsFileName)
}

func LogPath() string {
	return filepath.Join(ConfigDir(), LogFileName)
}
