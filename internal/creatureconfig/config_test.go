package creatureconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnlops/creature-controller-go/internal/ctlerr"
)

const sampleConfig = `
creature_id: beaker
modules:
  - id: A
    device_node: /dev/ttyUSB0
    enabled: true
    configuration: "SERVO\t0\t1\t2048\t4096"
audio:
  interface_ip: 192.168.1.50
  dialog_channel: 3
  output_device_id: 0
watchdog:
  power_warn_watts: 80
  power_limit_watts: 100
  power_dwell_seconds: 2.5
  board_temp_warn_f: 120
  board_temp_limit_f: 140
  board_temp_dwell_seconds: 5
  dxl_temp_warn_f: 150
  dxl_temp_limit_f: 170
  dxl_temp_dwell_seconds: 3
  dxl_load_warn_percent: 70
  dxl_load_limit_percent: 90
  dxl_load_dwell_seconds: 1
`

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()

	var dir = t.TempDir()
	var path = filepath.Join(dir, "creature.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadParsesFullConfig(t *testing.T) {
	var path = writeTempConfig(t, sampleConfig)

	var cfg, err = Load(path)
	require.NoError(t, err)

	assert.Equal(t, "beaker", cfg.CreatureID)
	require.Len(t, cfg.Modules, 1)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Modules[0].DeviceNode)
	assert.True(t, cfg.Modules[0].Enabled)
	assert.Equal(t, "192.168.1.50", cfg.Audio.InterfaceIP)
	assert.Equal(t, 3, cfg.Audio.DialogChannel)
	assert.InDelta(t, 2.5, cfg.Watchdog.PowerDwell().Seconds(), 0.0001)
}

func TestLoadMissingFileIsConfigurationInvalid(t *testing.T) {
	var _, err = Load("/nonexistent/path/creature.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ctlerr.Sentinel(ctlerr.ConfigurationInvalid))
}

func TestLoadRejectsEmptyModuleList(t *testing.T) {
	var path = writeTempConfig(t, "creature_id: beaker\nmodules: []\n")

	var _, err = Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	var path = writeTempConfig(t, "creature_id: [this is not valid\n")

	var _, err = Load(path)
	require.Error(t, err)
}
