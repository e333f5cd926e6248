package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := fmt.Sprintf(`
redis:
  url: redis://%s/0
namespaces:
  roles:
    cacheKeyPrefix: "RolesPermissionsCache:"
    cachePopulatorMaxTries: 1
    cachePopulatorMsGraceTime: 10
`, mr.Addr())
	path := filepath.Join(t.TempDir(), "dscache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return mr, path
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", cfg, "--namespace", "roles"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSetGetDelKeysClear(t *testing.T) {
	mr, cfg := setup(t)

	out, err := run(t, cfg, "set", "admin/eu", `{"perms":["read"]}`)
	require.NoError(t, err)
	assert.Equal(t, "RolesPermissionsCache:admin_eu\n", out)

	raw, err := mr.Get("RolesPermissionsCache:admin_eu")
	require.NoError(t, err)
	assert.Contains(t, raw, `"updatedAt":`)

	out, err = run(t, cfg, "get", "admin/eu")
	require.NoError(t, err)
	assert.Contains(t, out, `"perms": [`)

	out, err = run(t, cfg, "get", "--peek", "admin/eu")
	require.NoError(t, err)
	assert.Contains(t, out, `"updatedAt":`)

	_, err = run(t, cfg, "set", "viewer", `{"perms":[]}`)
	require.NoError(t, err)
	require.NoError(t, mr.Set("Other:x", "{}"))

	out, err = run(t, cfg, "keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"RolesPermissionsCache:admin_eu", "RolesPermissionsCache:viewer"},
		strings.Fields(out))

	out, err = run(t, cfg, "del", "viewer")
	require.NoError(t, err)
	assert.Equal(t, "RolesPermissionsCache:viewer deleted=true\n", out)

	_, err = run(t, cfg, "clear")
	require.NoError(t, err)
	assert.False(t, mr.Exists("RolesPermissionsCache:admin_eu"))
	assert.True(t, mr.Exists("Other:x"))
}

func TestGetMissing(t *testing.T) {
	_, cfg := setup(t)

	_, err := run(t, cfg, "get", "--peek", "nobody")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, cfg, "get", "nobody")
	assert.ErrorContains(t, err, "not generated")
}

func TestBadInput(t *testing.T) {
	_, cfg := setup(t)

	_, err := run(t, cfg, "set", "k", `[1,2]`)
	assert.ErrorContains(t, err, "JSON object")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "--namespace", "nope", "keys"})
	assert.ErrorContains(t, cmd.Execute(), "unknown namespace")
}
