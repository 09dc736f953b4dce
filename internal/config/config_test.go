package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Monitor.Enabled)
	assert.Equal(t, 10*time.Second, cfg.StateTimeout)
}

func TestLoadFromFile(t *testing.T) {
	content := `
logging:
  level: debug
  format: json
pipeline:
  name: demo
  elements:
    - factory: audiotestsrc
      properties:
        num-buffers: 100
    - factory: fakesink
monitor:
  enabled: true
  host: 0.0.0.0
  port: 8099
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.Len(t, cfg.Pipeline.Elements, 2)
	assert.Equal(t, "audiotestsrc", cfg.Pipeline.Elements[0].Factory)
	assert.Equal(t, 100, cfg.Pipeline.Elements[0].Properties["num-buffers"])
	assert.True(t, cfg.Monitor.Enabled)
	assert.Equal(t, "0.0.0.0:8099", cfg.Monitor.Addr())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/no/such/file.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Pipeline.Elements = []ElementConfig{{Factory: ""}}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Monitor.Enabled = true
	cfg.Monitor.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.StateTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestLoggingValidate(t *testing.T) {
	cfg := DefaultLoggingConfig()
	require.NoError(t, cfg.Validate())

	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLoggingConfig()
	cfg.Output = "file"
	assert.Error(t, cfg.Validate(), "file output requires a path")
	cfg.File = "/tmp/gstkit.log"
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GSTKIT_LOG_LEVEL", "DEBUG")
	t.Setenv("GSTKIT_LOG_FORMAT", "json")

	cfg := DefaultLoggingConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}
