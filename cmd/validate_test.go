package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/metromatic/core/metrics"
)

const validConfig = `instrument:
  backends:
    - type: log
  metrics:
    - { type: timing, name: job, eventStart: job.start, eventStop: job.stop }
mqtt:
  broker: tcp://localhost:1883
  events:
    - { topic: jobs/start, event: job.start }
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, validConfig)
	out, err := execute(t, "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 backends, 1 metrics, 1 mqtt bindings")
}

func TestValidateCommandUnknownBackend(t *testing.T) {
	path := writeConfig(t, `instrument:
  backends:
    - type: graphite
mqtt:
  broker: tcp://localhost:1883
  events:
    - { topic: t, event: e }
`)
	_, err := execute(t, "validate", "-c", path)
	assert.ErrorContains(t, err, `unknown backend type "graphite"`)
}

func TestValidateCommandBadMetric(t *testing.T) {
	path := writeConfig(t, `instrument:
  backends:
    - type: nop
  metrics:
    - { type: timing, name: job, eventStart: job.start }
mqtt:
  broker: tcp://localhost:1883
  events:
    - { topic: t, event: e }
`)
	_, err := execute(t, "validate", "-c", path)
	assert.ErrorContains(t, err, "eventStop")
}

func TestBackendsCommand(t *testing.T) {
	out, err := execute(t, "backends")
	require.NoError(t, err)
	for _, name := range []string{"custom", "statsd", "cloudwatch", "prometheus", "influx", "log", "nop"} {
		assert.Contains(t, out, name)
	}
}

func TestValidateCommandIncompleteLegacyStatsd(t *testing.T) {
	path := writeConfig(t, `instrument:
  statsd:
    host: localhost
mqtt:
  broker: tcp://localhost:1883
  events:
    - { topic: t, event: e }
`)
	_, err := execute(t, "validate", "-c", path)
	assert.ErrorIs(t, err, coremetrics.ErrConfig)
	assert.ErrorContains(t, err, "statsd backend requires host and port")
}

func TestValidateCommandBadBackendConf(t *testing.T) {
	path := writeConfig(t, `instrument:
  backends:
    - type: influx
      conf: { url: "http://localhost:8086" }
mqtt:
  broker: tcp://localhost:1883
  events:
    - { topic: t, event: e }
`)
	_, err := execute(t, "validate", "-c", path)
	assert.ErrorIs(t, err, coremetrics.ErrConfig)
}
