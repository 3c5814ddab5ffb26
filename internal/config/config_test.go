package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/syllabus-viz/sylgraph/internal/viz"
)

// clearEnv isolates a test from overrides set in the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvSyllabus, EnvRelations, EnvAddr, EnvLogLevel} {
		t.Setenv(env, "")
	}
	// keep a stray .env out of the test (t.Chdir equivalent for go1.21)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
syllabus: https://example.edu/syllabus.csv
relations: /srv/relations.csv
addr: 127.0.0.1:9000
log_level: debug
log_pretty: false
fetch_timeout: 5s
watch: true
layout: hierarchical
title: CS Curriculum
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Config{
		Syllabus:     "https://example.edu/syllabus.csv",
		Relations:    "/srv/relations.csv",
		Addr:         "127.0.0.1:9000",
		LogLevel:     "debug",
		LogPretty:    false,
		FetchTimeout: 5 * time.Second,
		Watch:        true,
		Layout:       viz.LayoutHierarchical,
		Title:        "CS Curriculum",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "title: Physics\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "Physics" || cfg.Syllabus != DefaultSyllabus || cfg.Addr != DefaultAddr {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "syllabus: from-file.csv\naddr: :1111\n")
	t.Setenv(EnvSyllabus, "from-env.csv")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Syllabus != "from-env.csv" {
		t.Errorf("Syllabus = %q, want env override", cfg.Syllabus)
	}
	if cfg.Addr != ":1111" {
		t.Errorf("Addr = %q, want file value", cfg.Addr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override", cfg.LogLevel)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvRelations)
	if err := os.WriteFile(".env", []byte(EnvRelations+"=dotenv.csv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Relations != "dotenv.csv" {
		t.Errorf("Relations = %q, want value from .env", cfg.Relations)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad log level", "log_level: chatty\n", ErrInvalidLogLevel},
		{"bad layout", "layout: spiral\n", viz.ErrInvalidLayout},
		{"zero timeout", "fetch_timeout: 0s\n", ErrInvalidTimeout},
		{"bad yaml", "syllabus: [unclosed\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", ConfigDir, ConfigFile) {
		t.Errorf("DefaultPath() = %q", got)
	}
}
