package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func Test_DB_Config_Set_Then_Show(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := runCLI(t, "db", "config", "set", "--data-dir", dataDir,
		"--host", "db.internal", "--port", "6543", "--password", "hunter2")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dataDir, "db-config.json"))
	require.NoError(t, err)
	var stored config.Connection
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "db.internal", stored.Host)
	assert.Equal(t, 6543, stored.Port)
	assert.Equal(t, "hunter2", stored.Password)

	out, err := runCLI(t, "db", "config", "show", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, `"host": "db.internal"`)
	assert.NotContains(t, out, "hunter2")

	out, err = runCLI(t, "db", "config", "show", "--data-dir", dataDir, "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "hunter2")
}

func Test_ConnectionPatch_Only_Includes_Changed_Flags(t *testing.T) {
	t.Parallel()

	cmd := newDBTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "5432", "--user", "alice"}))

	p := connectionPatch(cmd)

	require.NotNil(t, p.Port)
	assert.Equal(t, 5432, *p.Port)
	require.NotNil(t, p.User)
	assert.Equal(t, "alice", *p.User)
	assert.Nil(t, p.Host)
	assert.Nil(t, p.Password)
}
