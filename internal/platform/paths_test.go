package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsFor(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configDir  string
		dataDir    string
		wantConfig string
		wantUsers  string
		wantDB     string
	}{
		{
			name:       "linux honors xdg overrides",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configDir:  "/fallback/config",
			dataDir:    "/fallback/data",
			wantConfig: filepath.Join("/xdg/config", "luftborn", "config.toml"),
			wantUsers:  filepath.Join("/xdg/config", "luftborn", "users.yaml"),
			wantDB:     filepath.Join("/xdg/data", "luftborn", "luftborn.db"),
		},
		{
			name:       "linux without xdg falls back",
			goos:       "linux",
			env:        map[string]string{},
			configDir:  "/home/me/.config",
			dataDir:    "/home/me/.local/share",
			wantConfig: filepath.Join("/home/me/.config", "luftborn", "config.toml"),
			wantUsers:  filepath.Join("/home/me/.config", "luftborn", "users.yaml"),
			wantDB:     filepath.Join("/home/me/.local/share", "luftborn", "luftborn.db"),
		},
		{
			name:       "windows splits roaming and local",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`, "LOCALAPPDATA": `C:\Users\me\AppData\Local`},
			configDir:  `C:\fallback\config`,
			dataDir:    `C:\fallback\data`,
			wantConfig: filepath.Join(`C:\Users\me\AppData\Roaming`, "luftborn", "config.toml"),
			wantUsers:  filepath.Join(`C:\Users\me\AppData\Roaming`, "luftborn", "users.yaml"),
			wantDB:     filepath.Join(`C:\Users\me\AppData\Local`, "luftborn", "luftborn.db"),
		},
		{
			name:       "darwin ignores xdg variables",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			configDir:  "/Users/me/Library/Application Support",
			dataDir:    "/Users/me/Library/Application Support",
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "luftborn", "config.toml"),
			wantUsers:  filepath.Join("/Users/me/Library/Application Support", "luftborn", "users.yaml"),
			wantDB:     filepath.Join("/Users/me/Library/Application Support", "luftborn", "luftborn.db"),
		},
		{
			name:       "unknown goos uses the passed dirs",
			goos:       "freebsd",
			env:        map[string]string{},
			configDir:  "/cfg",
			dataDir:    "/data",
			wantConfig: filepath.Join("/cfg", "luftborn", "config.toml"),
			wantUsers:  filepath.Join("/cfg", "luftborn", "users.yaml"),
			wantDB:     filepath.Join("/data", "luftborn", "luftborn.db"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.configDir, tc.dataDir, "luftborn")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if p.ConfigPath != tc.wantConfig {
				t.Errorf("config path = %q, want %q", p.ConfigPath, tc.wantConfig)
			}
			if p.UsersPath != tc.wantUsers {
				t.Errorf("users path = %q, want %q", p.UsersPath, tc.wantUsers)
			}
			if p.DBPath != tc.wantDB {
				t.Errorf("db path = %q, want %q", p.DBPath, tc.wantDB)
			}
			if p.DataDir != filepath.Dir(p.DBPath) {
				t.Errorf("data dir = %q, want the db parent dir", p.DataDir)
			}
		})
	}
}

func TestPathsForRejectsMissingInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "luftborn"); err == nil {
		t.Fatal("expected error for empty config dir")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/config", "", "luftborn"); err == nil {
		t.Fatal("expected error for empty data dir")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/config", "/tmp/data", "  "); err == nil {
		t.Fatal("expected error for blank app name")
	}
}

func TestDefaultPaths(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.UsersPath == "" || p.DataDir == "" || p.DBPath == "" {
		t.Fatalf("expected every path resolved, got %#v", p)
	}
}

func TestDefaultPathsDevModeKeepsSeparateTree(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "luftborn", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "luftborn-dev" {
		t.Fatalf("expected luftborn-dev config dir, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "luftborn-dev.db" {
		t.Fatalf("expected luftborn-dev.db, got %q", p.DBPath)
	}
}
