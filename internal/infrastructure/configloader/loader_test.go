package configloader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	configloader "github.com/bionicotaku/order-ingest/internal/infrastructure/configloader"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadFromFile(t *testing.T) {
	cfgPath := writeConfig(t, `server:
  http:
    addr: "0.0.0.0:9090"
    timeout: 15s
    push_path: /pubsub/push
    max_body_bytes: 2048

schema_registry:
  project_id: demo-project
  schema_id: orders
  revision_id: abc123
  fetch_timeout: 3s

messaging:
  pull:
    topic_id: orders
    subscription_id: orders-pull
    receive:
      num_goroutines: 2
      max_extension: 1m

observability:
  tracing:
    enabled: true
    exporter: stdout
    sampling_ratio: 0.5
`)

	runtimeCfg, err := configloader.Load(configloader.Params{ConfPath: cfgPath})
	if err != nil {
		t.Fatalf("load runtime config: %v", err)
	}

	require.Equal(t, "0.0.0.0:9090", runtimeCfg.Server.Address)
	require.Equal(t, 15*time.Second, runtimeCfg.Server.Timeout)
	require.Equal(t, "/pubsub/push", runtimeCfg.Server.PushPath)
	require.Equal(t, int64(2048), runtimeCfg.Server.MaxBodyBytes)

	require.Equal(t, "demo-project", runtimeCfg.SchemaRegistry.ProjectID)
	require.Equal(t, "orders", runtimeCfg.SchemaRegistry.SchemaID)
	require.Equal(t, "abc123", runtimeCfg.SchemaRegistry.RevisionID)
	require.Equal(t, 3*time.Second, runtimeCfg.SchemaRegistry.FetchTimeout)

	pull := runtimeCfg.Messaging.Pull
	require.Equal(t, "orders-pull", pull.SubscriptionID)
	require.Equal(t, "demo-project", pull.ProjectID, "pull project falls back to registry project")
	require.Equal(t, 2, pull.Receive.NumGoroutines)
	require.Equal(t, time.Minute, pull.Receive.MaxExtension)

	require.True(t, runtimeCfg.Observability.Tracing.Enabled)
	require.InDelta(t, 0.5, runtimeCfg.Observability.Tracing.SamplingRatio, 1e-9)
	require.NotEmpty(t, runtimeCfg.Service.InstanceID)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	runtimeCfg, err := configloader.Load(configloader.Params{})
	require.NoError(t, err)

	require.Equal(t, ":8080", runtimeCfg.Server.Address)
	require.Equal(t, "/", runtimeCfg.Server.PushPath)
	require.Equal(t, int64(10<<20), runtimeCfg.Server.MaxBodyBytes)
	require.Equal(t, "northern-cooler-464505-t9", runtimeCfg.SchemaRegistry.ProjectID)
	require.Equal(t, "e_comm", runtimeCfg.SchemaRegistry.SchemaID)
	require.Equal(t, 10*time.Second, runtimeCfg.SchemaRegistry.FetchTimeout)
	require.Empty(t, runtimeCfg.Messaging.Pull.SubscriptionID)
	require.Equal(t, "order-ingest", runtimeCfg.Service.Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfgPath := writeConfig(t, `server:
  http:
    addr: "127.0.0.1:8000"
`)
	t.Setenv("PORT", "9999")
	t.Setenv("SCHEMA_PROJECT_ID", "env-project")
	t.Setenv("SCHEMA_ID", "env-schema")
	t.Setenv("PUBSUB_EMULATOR_HOST", "localhost:8085")
	t.Setenv("APP_ENV", "prod")

	runtimeCfg, err := configloader.Load(configloader.Params{ConfPath: cfgPath})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", runtimeCfg.Server.Address)
	require.Equal(t, "env-project", runtimeCfg.SchemaRegistry.ProjectID)
	require.Equal(t, "env-schema", runtimeCfg.SchemaRegistry.SchemaID)
	require.Equal(t, "localhost:8085", runtimeCfg.SchemaRegistry.EmulatorEndpoint)
	require.Equal(t, "localhost:8085", runtimeCfg.Messaging.Pull.EmulatorEndpoint)
	require.Equal(t, "production", runtimeCfg.Service.Environment)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"push path without slash": `server:
  http:
    push_path: pubsub
`,
		"bad duration": `schema_registry:
  fetch_timeout: soon
`,
		"sampling ratio out of range": `observability:
  tracing:
    enabled: true
    sampling_ratio: 2
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			cfgPath := writeConfig(t, body)
			_, err := configloader.Load(configloader.Params{ConfPath: cfgPath})
			require.Error(t, err)
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := configloader.Load(configloader.Params{ConfPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}
