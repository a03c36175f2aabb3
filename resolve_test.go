package kstor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	testCases := []struct {
		testName string
		name     string
		dir      string
		want     string
	}{
		{"defaults", "", "", filepath.Join(home, ".kstor", "myapp", "config.json")},
		{"extension appended", "custom", "", filepath.Join(home, ".kstor", "myapp", "custom.json")},
		{"dotted name kept as-is", ".customrc", "", filepath.Join(home, ".kstor", "myapp", ".customrc")},
		{"name with sub-path", "mydir/conf.json", "", filepath.Join(home, ".kstor", "mydir", "conf.json")},
		{"relative dir override", "conf.json", "./.configs", filepath.Join(".configs", "conf.json")},
		{"absolute dir override", "conf.json", "/absolute/path", filepath.Join("/absolute/path", "conf.json")},
		{"dir with default name", "", "/data", filepath.Join("/data", "config.json")},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			got, err := resolvePath(tc.name, tc.dir, "myapp")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolvePath_AppNameFallsBackToWorkingDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	wd := t.TempDir()
	t.Chdir(wd)

	got, err := resolvePath("", "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kstor", filepath.Base(wd), "config.json"), got)
}
