package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")

	opts, err := Load(newFlagSet(), []string{"-c", missing})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Address)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, 30*24*time.Hour, opts.AuditRetention)
	assert.Equal(t, "hajimi:audit", opts.RedisStream)
	assert.Equal(t, []string{"*"}, opts.CORSOrigins)
	assert.False(t, opts.TLSEnabled())
}

func TestLoad_Flags(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")

	opts, err := Load(newFlagSet(), []string{
		"-c", missing,
		"-a", ":9090",
		"-p", "s3cret",
		"-w", "web",
		"-audit-retention", "2h",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", opts.Address)
	assert.Equal(t, Secrets{Password: "s3cret", WebPassword: "web"}, opts.Secrets())
	assert.Equal(t, 2*time.Hour, opts.AuditRetention)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, `{
		"address": ":7000",
		"password": "from-file",
		"web_password": "web-from-file",
		"redis_stream": "custom",
		"cors_allowed_origins": ["https://ui.example"],
		"tls_cert_file": "server.crt",
		"tls_key_file": "server.key"
	}`)

	opts, err := Load(newFlagSet(), []string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, ":7000", opts.Address)
	assert.Equal(t, "from-file", opts.Password)
	assert.Equal(t, "web-from-file", opts.WebPassword)
	assert.Equal(t, "custom", opts.RedisStream)
	assert.Equal(t, []string{"https://ui.example"}, opts.CORSOrigins)
	assert.True(t, opts.TLSEnabled())
	// unset keys keep their defaults
	assert.Equal(t, "info", opts.LogLevel)
}

func TestLoad_ExplicitFlagBeatsConfigFile(t *testing.T) {
	path := writeConfig(t, `{"address": ":7000", "password": "from-file"}`)

	opts, err := Load(newFlagSet(), []string{"-c", path, "-p", "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", opts.Address)
	assert.Equal(t, "from-flag", opts.Password)
}

func TestLoad_EnvBeatsEverything(t *testing.T) {
	path := writeConfig(t, `{"password": "from-file"}`)
	t.Setenv("PASSWORD", "from-env")
	t.Setenv("WEB_PASSWORD", "web-from-env")
	t.Setenv("SERVER_ADDRESS", ":6000")
	t.Setenv("AUDIT_RETENTION", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	opts, err := Load(newFlagSet(), []string{"-c", path, "-p", "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, "from-env", opts.Password)
	assert.Equal(t, "web-from-env", opts.WebPassword)
	assert.Equal(t, ":6000", opts.Address)
	assert.Equal(t, 90*time.Minute, opts.AuditRetention)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, opts.CORSOrigins)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, `{"password": "env-path"}`)
	t.Setenv("CONFIG", path)

	opts, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "env-path", opts.Password)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		path := writeConfig(t, `{not json`)
		_, err := Load(newFlagSet(), []string{"-c", path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})

	t.Run("unknown flag", func(t *testing.T) {
		fs := newFlagSet()
		fs.SetOutput(os.Stderr)
		_, err := Load(fs, []string{"-nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse flags")
	})

	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("AUDIT_RETENTION", "forever")
		missing := filepath.Join(t.TempDir(), "absent.json")
		_, err := Load(newFlagSet(), []string{"-c", missing})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env")
	})
}

func TestSecrets_ProviderNeverFails(t *testing.T) {
	s := Secrets{Password: "a", WebPassword: "b"}
	got, err := s.Secrets()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
