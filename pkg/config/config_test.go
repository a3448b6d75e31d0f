package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/require"

	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
)

func TestDefaults(t *testing.T) {
	cfg, err := initConfig(nil)
	require.NoError(t, err)

	require.Equal(t, "ristretto255", cfg.Scheme.Group)
	require.Equal(t, "sha512", cfg.Scheme.Hash)
	require.Equal(t, uint32(commitreveal.DefaultMaxMessageLength), cfg.Scheme.MaxMessageLength)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Equal(t, "system", cfg.Clock.Kind)
	require.Nil(t, cfg.Server)
	require.Nil(t, cfg.Metrics)

	engineCfg, err := cfg.Scheme.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, commitreveal.DefaultConfig(), engineCfg)
}

func TestConfigYAML(t *testing.T) {
	yaml := `
scheme:
  group: secp256k1
  hash: blake3
  max_message_length: 64
  generator_policy: fixed
  fixed_h_seed: "block 0"
  terminal_reveal: true
storage:
  backend: pogreb
  path: /var/lib/pedersen
clock:
  kind: height
server:
  endpoint: localhost:8080
log:
  format: logfmt
  level: debug
metrics:
  pull_endpoint: localhost:9090
`
	cfg, err := initConfig(rawbytes.Provider([]byte(yaml)))
	require.NoError(t, err)

	require.Equal(t, &SchemeConfig{
		Group:            "secp256k1",
		Hash:             "blake3",
		MaxMessageLength: 64,
		GeneratorPolicy:  "fixed",
		FixedHSeed:       "block 0",
		TerminalReveal:   true,
	}, cfg.Scheme)
	require.Equal(t, &StorageConfig{Backend: "pogreb", Path: "/var/lib/pedersen"}, cfg.Storage)
	require.Equal(t, "height", cfg.Clock.Kind)
	require.Equal(t, "localhost:8080", cfg.Server.Endpoint)
	require.Equal(t, "localhost:9090", cfg.Metrics.PullEndpoint)

	engineCfg, err := cfg.Scheme.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, commitreveal.PolicyFixed, engineCfg.Policy)
	require.True(t, engineCfg.TerminalReveal)
}

func TestConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  endpoint: localhost:8080\n"), 0o600))

	t.Setenv("SCHEME__MAX_MESSAGE_LENGTH", "32")
	t.Setenv("LOG__LEVEL", "warn")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(32), cfg.Scheme.MaxMessageLength)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "localhost:8080", cfg.Server.Endpoint)
}

func TestConfigMissingFile(t *testing.T) {
	_, err := InitConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestConfigInvalid(t *testing.T) {
	for name, yaml := range map[string]string{
		"group":          "scheme:\n  group: p256\n",
		"hash":           "scheme:\n  hash: md5\n",
		"policy":         "scheme:\n  generator_policy: trusted\n",
		"fixed no seed":  "scheme:\n  generator_policy: fixed\n",
		"backend":        "storage:\n  backend: redis\n",
		"pogreb no path": "storage:\n  backend: pogreb\n",
		"postgres":       "storage:\n  backend: postgres\n",
		"clock":          "clock:\n  kind: wall\n",
		"server":         "server:\n  endpoint: \"\"\n",
		"log level":      "log:\n  level: loud\n",
		"metrics":        "metrics:\n  pull_endpoint: \"\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := initConfig(rawbytes.Provider([]byte(yaml)))
			require.Error(t, err)
		})
	}
}
