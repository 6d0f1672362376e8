package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evacsim/internal/engine"
)

func TestShippedFileMatchesDefault(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "configs", "evacsim.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestEmptyFileIsDefault(t *testing.T) {
	got, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestPartialOverride(t *testing.T) {
	got, err := Parse([]byte("frame_rate_hz: 30\nsteering:\n  crowd_weight: 0.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.FrameRateHz)
	assert.Equal(t, 0.5, got.Steering.CrowdWeight)
	assert.Equal(t, 0.8, got.Steering.HazardWeight, "untouched keys keep defaults")
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "speeed: 3\n",
		"negative rate":    "frame_rate_hz: -1\n",
		"panic over one":   "near_hazard_panic: 1.5\n",
		"unknown scenario": "scenarios:\n  flood: {panic_bias: 0.3}\n",
		"bad color":        "palette: {calm: green}\n",
		"profile no speed": "profiles:\n  - {role: Student, panic_sensitivity: 0.5}\n",
		"no exits":         "building: {name: x, floor: {min_x: 0, max_x: 1, min_z: 0, max_z: 1}, exits: []}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateRejectsExitOutsideFloor(t *testing.T) {
	doc := `
building:
  name: tiny
  floor: {min_x: -5, max_x: 5, min_z: -5, max_z: 5}
  exits:
    - {name: Far, position: {x: 50, z: 0}}
`
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "outside")
}

func TestDirectorConfig(t *testing.T) {
	cfg, err := Default().DirectorConfig()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultScenarios(), cfg.Scenarios)
	assert.Equal(t, engine.DefaultConfig().Steering, cfg.Steering)
	assert.Equal(t, 12, Default().Population())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
