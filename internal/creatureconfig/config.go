// Package creatureconfig defines the configuration file shape this
// controller loads at startup: one entry per motor module's device node,
// the audio interface to receive on, and the watchdog's thresholds.
package creatureconfig

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
)

// ModuleConfig describes one motor module's serial connection and the
// configuration string sent to it once it reports INIT.
type ModuleConfig struct {
	ID            string `yaml:"id"`
	DeviceNode    string `yaml:"device_node"`
	Enabled       bool   `yaml:"enabled"`
	Configuration string `yaml:"configuration"`
}

// AudioConfig describes the network interface and channel this creature
// receives dialog/BGM audio on.
type AudioConfig struct {
	InterfaceIP    string `yaml:"interface_ip"`
	DialogChannel  int    `yaml:"dialog_channel"`
	OutputDeviceID int    `yaml:"output_device_id"`
}

// WatchdogConfig carries the warn/limit/dwell triple for each of the four
// envelopes, expressed in seconds for the dwell fields on disk.
type WatchdogConfig struct {
	PowerWarnWatts        float64 `yaml:"power_warn_watts"`
	PowerLimitWatts       float64 `yaml:"power_limit_watts"`
	PowerDwellSeconds     float64 `yaml:"power_dwell_seconds"`
	BoardTempWarnF        float64 `yaml:"board_temp_warn_f"`
	BoardTempLimitF       float64 `yaml:"board_temp_limit_f"`
	BoardTempDwellSeconds float64 `yaml:"board_temp_dwell_seconds"`
	DxlTempWarnF          float64 `yaml:"dxl_temp_warn_f"`
	DxlTempLimitF         float64 `yaml:"dxl_temp_limit_f"`
	DxlTempDwellSeconds   float64 `yaml:"dxl_temp_dwell_seconds"`
	DxlLoadWarnPercent    float64 `yaml:"dxl_load_warn_percent"`
	DxlLoadLimitPercent   float64 `yaml:"dxl_load_limit_percent"`
	DxlLoadDwellSeconds   float64 `yaml:"dxl_load_dwell_seconds"`
}

// PowerDwell returns the power draw dwell period.
func (w WatchdogConfig) PowerDwell() time.Duration {
	return time.Duration(w.PowerDwellSeconds * float64(time.Second))
}

// BoardTempDwell returns the board temperature dwell period.
func (w WatchdogConfig) BoardTempDwell() time.Duration {
	return time.Duration(w.BoardTempDwellSeconds * float64(time.Second))
}

// DxlTempDwell returns the Dynamixel temperature dwell period.
func (w WatchdogConfig) DxlTempDwell() time.Duration {
	return time.Duration(w.DxlTempDwellSeconds * float64(time.Second))
}

// DxlLoadDwell returns the Dynamixel load dwell period.
func (w WatchdogConfig) DxlLoadDwell() time.Duration {
	return time.Duration(w.DxlLoadDwellSeconds * float64(time.Second))
}

// Config is the full creature configuration file.
type Config struct {
	CreatureID string         `yaml:"creature_id"`
	Modules    []ModuleConfig `yaml:"modules"`
	Audio      AudioConfig    `yaml:"audio"`
	Watchdog   WatchdogConfig `yaml:"watchdog"`
}

// Load reads and parses a creature configuration file. A missing file,
// unparsable YAML, or a configuration with zero modules is
// ConfigurationInvalid — all fatal at startup.
func Load(path string) (*Config, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "reading config file: "+err.Error())
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "parsing config file: "+err.Error())
	}

	if len(cfg.Modules) == 0 {
		return nil, ctlerr.New(ctlerr.ConfigurationInvalid, "configuration declares no modules")
	}

	return &cfg, nil
}
