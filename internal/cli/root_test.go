package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kstor", cmd.Use)
	assert.Contains(t, cmd.Long, "JSON document")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"get", "set", "has", "del", "keys", "query", "clear", "path"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"name", "dir", "app", "entrypoint", "key", "profile"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "flag --%s should exist", name)
		assert.Equal(t, "", flag.DefValue)
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	skipFlag := queryCmd.Flags().Lookup("skip")
	require.NotNil(t, skipFlag)
	assert.Equal(t, "0", skipFlag.DefValue)

	takeFlag := queryCmd.Flags().Lookup("take")
	require.NotNil(t, takeFlag)
	assert.Equal(t, "0", takeFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"path", "--format", "xml", "--dir", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := "name: conf.json\ndir: /var/lib/kstor\nentrypoint: apps\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "conf.json", profile.Name)
	assert.Equal(t, "/var/lib/kstor", profile.Dir)
	assert.Equal(t, "apps", profile.Entrypoint)
	assert.Empty(t, profile.EncryptionKey)
}

func TestLoadProfileUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namee: typo.json\n"), 0o600))

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode profile")
}

func TestLoadProfileEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, &Profile{}, profile)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read profile")
}

func TestProfileAppliesWhenFlagsUnset(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	storeDir := filepath.Join(home, "stores")
	profilePath := filepath.Join(home, "custom.yaml")
	content := "name: fromprofile.json\ndir: " + storeDir + "\n"
	require.NoError(t, os.WriteFile(profilePath, []byte(content), 0o600))

	out := runCommand(t, "--profile", profilePath, "path")
	assert.Equal(t, filepath.Join(storeDir, "fromprofile.json")+"\n", out)
}

func TestFlagsWinOverProfile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	storeDir := filepath.Join(home, "stores")
	profilePath := filepath.Join(home, "custom.yaml")
	content := "name: fromprofile.json\ndir: " + storeDir + "\n"
	require.NoError(t, os.WriteFile(profilePath, []byte(content), 0o600))

	out := runCommand(t, "--profile", profilePath, "--name", "fromflag.json", "path")
	assert.Equal(t, filepath.Join(storeDir, "fromflag.json")+"\n", out)
}

func TestDefaultProfilePickedUpFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	storeDir := filepath.Join(home, "stores")
	content := "name: home.json\ndir: " + storeDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".kstor.yaml"), []byte(content), 0o600))

	out := runCommand(t, "path")
	assert.Equal(t, filepath.Join(storeDir, "home.json")+"\n", out)
}
