// Package settings manages persistent user defaults for the icepnr CLI,
// loaded from an optional YAML file before flags are parsed.
package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDevice is the device used when -d/--device is not given.
const DefaultDevice = "1k"

const (
	// DefaultRunLogMaxSizeMB is the default maximum run-log size in megabytes.
	DefaultRunLogMaxSizeMB = 10

	// DefaultRunLogMaxBackups is the default maximum number of rotated run-log files.
	DefaultRunLogMaxBackups = 10
)

// Settings holds persistent user preferences read from ~/.icepnrrc.
type Settings struct {
	// DefaultDevice is the device to target when -d is not specified.
	DefaultDevice string `yaml:"default_device,omitempty"`

	// DefaultPackage overrides the device's default package.
	DefaultPackage string `yaml:"default_package,omitempty"`

	// DefaultSeed is the seed used when -s is not specified.
	DefaultSeed int64 `yaml:"default_seed,omitempty"`

	// ChipdbDirs lists directories searched, in order, for
	// chipdb-<device>.bin when -c is not specified.
	ChipdbDirs []string `yaml:"chipdb_dirs,omitempty"`

	// RunLogPath overrides the default run-log path.
	RunLogPath string `yaml:"run_log_path,omitempty"`

	// RunLogMaxSizeMB is the max run-log size in MB before rotation (default: 10).
	RunLogMaxSizeMB int `yaml:"run_log_max_size_mb,omitempty"`

	// RunLogMaxBackups is the max number of rotated run-log files (default: 10).
	RunLogMaxBackups int `yaml:"run_log_max_backups,omitempty"`

	// CacheAddr overrides the build-cache Redis address (ICEPNR_CACHE_ADDR).
	CacheAddr string `yaml:"cache_addr,omitempty"`
}

// DefaultSettingsPath returns ~/.icepnrrc, or a fallback under /tmp if the
// home directory can't be resolved.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/.icepnrrc"
	}
	return filepath.Join(home, ".icepnrrc")
}

// Load reads settings from the default location (~/.icepnrrc).
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty (zero-value) settings, not an error.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetDevice returns the configured default device, falling back to
// DefaultDevice.
func (s *Settings) GetDevice() string {
	if s.DefaultDevice != "" {
		return s.DefaultDevice
	}
	return DefaultDevice
}

// GetSeed returns the configured default seed, falling back to 1.
func (s *Settings) GetSeed() int64 {
	if s.DefaultSeed != 0 {
		return s.DefaultSeed
	}
	return 1
}

// FindChipdb searches ChipdbDirs in order for chipdb-<device>.bin,
// returning the first path that exists.
func (s *Settings) FindChipdb(device string) (string, bool) {
	name := "chipdb-" + device + ".bin"
	for _, dir := range s.ChipdbDirs {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// GetRunLogMaxSizeMB returns the run-log max size in MB with a default of 10.
func (s *Settings) GetRunLogMaxSizeMB() int {
	if s.RunLogMaxSizeMB > 0 {
		return s.RunLogMaxSizeMB
	}
	return DefaultRunLogMaxSizeMB
}

// GetRunLogMaxBackups returns the run-log max backups with a default of 10.
func (s *Settings) GetRunLogMaxBackups() int {
	if s.RunLogMaxBackups > 0 {
		return s.RunLogMaxBackups
	}
	return DefaultRunLogMaxBackups
}

// Clear resets all settings to defaults.
func (s *Settings) Clear() {
	*s = Settings{}
}
