// Package platform resolves per-user filesystem locations for
// configuration and data.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths holds the resolved locations for one app installation.
type Paths struct {
	ConfigPath string
	UsersPath  string
	DataDir    string
	DBPath     string
}

// Options selects the app name and layout variant to resolve for.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths resolves the standard luftborn locations.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: "luftborn"})
}

// DefaultPathsWithOptions resolves locations for the current platform.
// Dev mode suffixes the app name so a dev build keeps its own config
// tree and database.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = "luftborn"
	}
	if opts.DevMode {
		name += "-dev"
	}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}
	dataDir, err := platformDataDir(cfgDir)
	if err != nil {
		return Paths{}, err
	}
	overrides := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":   os.Getenv("XDG_DATA_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"LOCALAPPDATA":    os.Getenv("LOCALAPPDATA"),
	}
	return PathsFor(runtime.GOOS, overrides, cfgDir, dataDir, name)
}

// platformDataDir picks the data base dir for the running OS. Linux
// keeps data out of the config tree; Windows prefers the local
// profile over the roaming one.
func platformDataDir(cfgDir string) (string, error) {
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			return v, nil
		}
	}
	return cfgDir, nil
}

// PathsFor resolves locations from explicit inputs. The env map holds
// the per-platform override variables; empty values fall back to the
// user dirs passed in.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	switch {
	case userConfigDir == "" || userDataDir == "":
		return Paths{}, fmt.Errorf("config and data base dirs are required")
	case appName == "":
		return Paths{}, fmt.Errorf("app name is required")
	}

	configBase := pick(env[configOverrideVar(goos)], userConfigDir)
	dataBase := pick(env[dataOverrideVar(goos)], userDataDir)

	configDir := filepath.Join(configBase, appName)
	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configDir, "config.toml"),
		UsersPath:  filepath.Join(configDir, "users.yaml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
	}, nil
}

// configOverrideVar names the env var allowed to move the config base
// on goos. macOS and unlisted platforms take the user dir as is.
func configOverrideVar(goos string) string {
	switch goos {
	case "linux":
		return "XDG_CONFIG_HOME"
	case "windows":
		return "APPDATA"
	}
	return ""
}

func dataOverrideVar(goos string) string {
	switch goos {
	case "linux":
		return "XDG_DATA_HOME"
	case "windows":
		return "LOCALAPPDATA"
	}
	return ""
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
