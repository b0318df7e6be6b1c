package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears every WEAVER_* variable, so nothing leaks in from the machine
// running the tests.
func isolate(t *testing.T) (homeDir, workDir string) {
	t.Helper()

	homeDir = t.TempDir()
	workDir = t.TempDir()

	t.Setenv("HOME", homeDir)

	for _, envVarName := range []string{
		APIAddrEnvVarName,
		UsernameEnvVarName,
		PasswordEnvVarName,
		SessionFileEnvVarName,
	} {
		t.Setenv(envVarName, "")
		require.NoError(t, os.Unsetenv(envVarName))
	}

	previousWd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() {
		_ = os.Chdir(previousWd)
	})

	return homeDir, workDir
}

func writeHomeConfig(t *testing.T, homeDir, contents string) {
	t.Helper()

	configDir := filepath.Join(homeDir, ".weaver")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(contents), 0o644))
}

func writeLocalConfig(t *testing.T, workDir, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(workDir, ".weaver.yml"), []byte(contents), 0o644))
}

func TestDefaults(t *testing.T) {
	isolate(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.APIAddr)
	assert.Empty(t, config.Username)
	assert.Empty(t, config.Password)
	assert.Empty(t, config.SessionFile)
}

func TestHomeConfigFile(t *testing.T) {
	homeDir, _ := isolate(t)

	writeHomeConfig(t, homeDir, "api_addr: weaver.example.com:9000\nusername: admin\n")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "weaver.example.com:9000", config.APIAddr)
	assert.Equal(t, "admin", config.Username)
}

func TestLocalConfigOverridesHome(t *testing.T) {
	homeDir, workDir := isolate(t)

	writeHomeConfig(t, homeDir, "api_addr: home.example.com:9000\nusername: admin\n")
	writeLocalConfig(t, workDir, "api_addr: local.example.com:9000\n")

	config, err := Load()
	require.NoError(t, err)

	// The local file wins for the keys it sets, the home file fills the rest.
	assert.Equal(t, "local.example.com:9000", config.APIAddr)
	assert.Equal(t, "admin", config.Username)
}

func TestEnvOverridesFiles(t *testing.T) {
	homeDir, workDir := isolate(t)

	writeHomeConfig(t, homeDir, "api_addr: home.example.com:9000\n")
	writeLocalConfig(t, workDir, "api_addr: local.example.com:9000\n")

	t.Setenv(APIAddrEnvVarName, "env.example.com:9000")
	t.Setenv(SessionFileEnvVarName, "/tmp/session.json")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env.example.com:9000", config.APIAddr)
	assert.Equal(t, "/tmp/session.json", config.SessionFile)
}

func TestInvalidLocalFileIgnored(t *testing.T) {
	_, workDir := isolate(t)

	writeLocalConfig(t, workDir, "api_addr: [unclosed\n")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.APIAddr)
}
