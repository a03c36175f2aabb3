package kstor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultRootDir  = ".kstor"
	defaultFileName = "config.json"
)

// resolvePath maps {name, dir, appName} to the store file path:
//
//	name unset, dir unset    -> $HOME/.kstor/<appName>/config.json
//	"custom", dir unset      -> $HOME/.kstor/<appName>/custom.json
//	".customrc", dir unset   -> $HOME/.kstor/<appName>/.customrc
//	"mydir/conf.json", unset -> $HOME/.kstor/mydir/conf.json
//	"conf.json", "./.configs"-> ./.configs/conf.json
//
// appName falls back to the working directory's base name.
func resolvePath(name, dir, appName string) (string, error) {
	if name == "" {
		name = defaultFileName
	}
	if !strings.Contains(filepath.Base(name), ".") {
		name += ".json"
	}

	if dir != "" {
		return filepath.Join(dir, name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	// A name carrying its own sub-path relocates under the root directly.
	if filepath.Dir(name) != "." {
		return filepath.Join(home, defaultRootDir, name), nil
	}

	if appName == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		appName = filepath.Base(wd)
	}
	return filepath.Join(home, defaultRootDir, appName, name), nil
}
