package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testConfig = `
server:
  addr: ":9000"
  logPath: /var/log/strawberryfields
actor:
  name: alice
  displayName: Alice
  homeUrl: https://home.example/
  privatekey: from-yaml
  secret: from-yaml
`

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(body), 0644)
	assert.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	config := Config{}
	err := config.Load(writeConfig(t, testConfig))
	assert.NoError(t, err)

	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, "alice", config.Actor.Name)
	assert.Equal(t, "Alice", config.Actor.DisplayName)
	assert.Equal(t, "https://home.example/", config.Actor.HomeURL)
	assert.Equal(t, "public", config.Server.PublicDir)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "from-env")
	t.Setenv("SECRET", "also-from-env")

	config := Config{}
	err := config.Load(writeConfig(t, testConfig))
	assert.NoError(t, err)

	assert.Equal(t, "from-env", config.Actor.PrivateKey)
	assert.Equal(t, "also-from-env", config.Actor.Secret)
}

func TestLoadDefaults(t *testing.T) {
	config := Config{}
	err := config.Load(writeConfig(t, "actor:\n  name: alice\n"))
	assert.NoError(t, err)
	assert.Equal(t, ":8080", config.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	config := Config{}
	err := config.Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
