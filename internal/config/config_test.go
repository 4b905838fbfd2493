package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, 4096, cfg.ObsBuffer)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tenantId: contoso.example
clientId: client-1
outputDir: /exports
select: IsActive
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "contoso.example", cfg.TenantID)
	assert.Equal(t, "client-1", cfg.ClientID)
	assert.Equal(t, "/exports", cfg.OutputDir)
	assert.Equal(t, "IsActive", cfg.Select)
	// untouched fields keep defaults
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenantId: from-file\n"), 0o644))

	t.Setenv("INTUNE_TENANT_ID", "from-env")
	t.Setenv("EXPORT_OBS_BUFFER", "128")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TenantID)
	assert.Equal(t, 128, cfg.ObsBuffer)
}

func TestLoad_InvalidObsBufferFallsBack(t *testing.T) {
	t.Setenv("EXPORT_OBS_BUFFER", "zero")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.ObsBuffer)
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenantId: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
