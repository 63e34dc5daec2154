package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fautty/fautty/pkg/mock"
)

func TestLoadSeedMocks_SingleAndList(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "mocks/a_single.yaml", `
route: /api
path: /users
method: GET
status: 200
headers:
  X-Seed: "1"
body:
  ok: true
`)
	writeFile(t, dir, "mocks/b_list.json", `[
  {"route": "/api", "path": "/users/1", "method": "DELETE", "status": 204},
  {"route": "/api", "path": "/ping", "method": "GET", "body": "pong"}
]`)

	regs, err := LoadSeedMocks([]string{"mocks/*"}, dir)
	require.NoError(t, err)
	require.Len(t, regs, 3)

	assert.Equal(t, "get-/users-/api", regs[0].Key())
	assert.Equal(t, "1", regs[0].Headers.Get("x-seed"))
	assert.JSONEq(t, `{"ok":true}`, string(regs[0].Body))
	assert.Equal(t, 204, regs[1].Status)
	payload, contentType := regs[2].Body.Payload()
	assert.Equal(t, "pong", string(payload))
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
}

func TestLoadSeedMocks_RecursiveGlob(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "mocks/users/get.yaml", "route: /api\npath: /users\nmethod: GET\n")
	writeFile(t, dir, "mocks/orders/nested/post.yaml", "route: /api\npath: /orders\nmethod: POST\nstatus: 201\n")
	writeFile(t, dir, "mocks/readme.txt", "not a mock")

	regs, err := LoadSeedMocks([]string{"mocks/**/*.yaml"}, dir)
	require.NoError(t, err)
	require.Len(t, regs, 2)

	keys := []string{regs[0].Key(), regs[1].Key()}
	assert.Equal(t, []string{"post-/orders-/api", "get-/users-/api"}, keys)
}

func TestLoadSeedMocks_NoMatchesIsEmpty(t *testing.T) {
	t.Parallel()
	regs, err := LoadSeedMocks([]string{"missing/*.yaml"}, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestLoadSeedMocks_InvalidRegistration(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "route: /api\nmethod: GET\n")

	_, err := LoadSeedMocks([]string{"bad.yaml"}, dir)

	require.ErrorIs(t, err, mock.ErrMissingCallShape)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadSeedMocks_ParseErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"route": `)
	writeFile(t, dir, "broken.yaml", "route: [\n")

	_, err := LoadSeedMocks([]string{"broken.json"}, dir)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = LoadSeedMocks([]string{"broken.yaml"}, dir)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestLoadSeedMocks_AbsolutePattern(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "one.yml", "route: /api\npath: /x\nmethod: PUT\n")

	regs, err := LoadSeedMocks([]string{path}, filepath.Join(dir, "elsewhere"))
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "put-/x-/api", regs[0].Key())
}
