package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// FileConfig represents the optional filoma configuration file. All fields
// are pointers so that an absent key leaves the built-in default untouched.
type FileConfig struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Backend          *string `toml:"backend"`
	Concurrency      *int    `toml:"concurrency"`
	MaxDepth         *int    `toml:"max_depth"`
	FollowSymlinks   *bool   `toml:"follow_symlinks"`
	FastPathOnly     *bool   `toml:"fast_path_only"`
	NetworkTimeoutMs *int    `toml:"network_timeout_ms"`
	NetworkRetries   *int    `toml:"network_retries"`
	ShowProgress     *bool   `toml:"show_progress"`
}

// configPath returns the resolved path to the config file under the XDG
// config directory.
func configPath() string {
	return filepath.Join(xdg.ConfigHome, "filoma", "config.toml")
}

// loadFileConfig reads the config file. Returns a zero FileConfig (no error)
// if the file does not exist; the config file is always optional.
func loadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFileDefaults overlays config-file values onto opts for every flag the
// user did not set explicitly on the command line.
func applyFileDefaults(opts *probeOptions, file FileConfig, changed func(string) bool) {
	d := file.Defaults

	if d.Backend != nil && !changed("backend") {
		opts.backend = *d.Backend
	}
	if d.Concurrency != nil && !changed("concurrency") {
		opts.concurrency = *d.Concurrency
	}
	if d.MaxDepth != nil && !changed("max-depth") {
		opts.maxDepth = *d.MaxDepth
	}
	if d.FollowSymlinks != nil && !changed("follow-symlinks") {
		opts.followSymlinks = *d.FollowSymlinks
	}
	if d.FastPathOnly != nil && !changed("fast-path-only") {
		opts.fastPathOnly = *d.FastPathOnly
	}
	if d.NetworkTimeoutMs != nil && !changed("network-timeout-ms") {
		opts.networkTimeoutMs = *d.NetworkTimeoutMs
	}
	if d.NetworkRetries != nil && !changed("network-retries") {
		opts.networkRetries = *d.NetworkRetries
	}
	if d.ShowProgress != nil && !changed("progress") {
		opts.showProgress = *d.ShowProgress
	}
}
