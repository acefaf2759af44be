package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Convert: ConvertConfig{
			Format:  FormatMMOItems,
			Workers: 4,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
convert:
  format: itemsadder
  workers: 2
  script_file: classify.lua
paths:
  source: in
  output: out
stat-mappings:
  mana: MANA
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, FormatItemsAdder, cfg.Convert.Format)
	assert.Equal(t, 2, cfg.Convert.Workers)
	assert.Equal(t, "classify.lua", cfg.Convert.ScriptFile)
	assert.Equal(t, "in", cfg.Paths.Source)
	assert.Equal(t, "out", cfg.Paths.Output)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestOpen_NoPathUsesDefaults(t *testing.T) {
	v, err := Open("")
	require.NoError(t, err)
	cfg, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, FormatMMOItems, cfg.Convert.Format)
	assert.Equal(t, 0, cfg.Convert.Workers)
}

func TestOpen_EnvOverride(t *testing.T) {
	t.Setenv("CONVERT_CONVERT_WORKERS", "7")
	t.Setenv("CONVERT_LOGGING_LEVEL", "warn")
	v, err := Open("")
	require.NoError(t, err)
	cfg, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Convert.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestOpen_KeepsMappingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
attribute-mappings:
  attack-damage: GENERIC_ATTACK_DAMAGE
`), 0644))
	v, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "GENERIC_ATTACK_DAMAGE", v.GetStringMapString("attribute-mappings")["attack-damage"])
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateConvertFormat(t *testing.T) {
	for _, format := range []string{FormatMMOItems, FormatItemsAdder} {
		cfg := validConfig()
		cfg.Convert.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Convert.Format = "oraxen"
	assert.Error(t, cfg.Validate())
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Convert.Workers = -1
	cfg.Convert.ScriptInstructionLimit = -5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "convert.workers")
	assert.Contains(t, err.Error(), "convert.script_instruction_limit")
}

func TestPropertyNonNegativeWorkersValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		workers := rapid.IntRange(0, 1024).Draw(t, "workers")
		cfg := validConfig()
		cfg.Convert.Workers = workers
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid workers %d rejected: %v", workers, err)
		}
	})
}

func TestPropertyNegativeWorkersInvalid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		workers := rapid.IntRange(-1000, -1).Draw(t, "workers")
		cfg := validConfig()
		cfg.Convert.Workers = workers
		if cfg.Validate() == nil {
			t.Fatalf("invalid workers %d accepted", workers)
		}
	})
}
