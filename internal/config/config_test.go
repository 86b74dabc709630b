// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points VYCTL_CFG at a testdata file and resets the global
// Config so the next lookup reloads it.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err)

	t.Setenv("VYCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "http://router.lab:3001", cfg.Data["api_url"])
				assert.Equal(t, "json", cfg.Data["output"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				colors, ok := cfg.Data["colors"].(map[string]interface{})
				require.True(t, ok, "colors should be a map")
				assert.Equal(t, "#00ff00", colors["title"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "2m", cfg.Data["refresh_interval"])
				assert.Equal(t, 30, cfg.Data["timeout"])
				assert.Equal(t, true, cfg.Data["titles"])
				assert.Equal(t, 1.5, cfg.Data["ratio"])
				tags, ok := cfg.Data["tags"].([]interface{})
				require.True(t, ok)
				assert.Len(t, tags, 2)
			},
		},
		{
			name:     "invalid yaml",
			testFile: "invalid.yaml",
			wantErr:  true,
		},
		{
			name:     "missing file",
			testFile: "nope.yaml",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		t.Setenv("VYCTL_CFG", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "config file not found")
	})

	t.Run("directory", func(t *testing.T) {
		t.Setenv("VYCTL_CFG", t.TempDir())
		_, err := Load()
		assert.ErrorIs(t, err, ErrIsDirectory)
		assert.Contains(t, err.Error(), "points to a directory")
	})

	t.Run("standard locations empty", func(t *testing.T) {
		t.Setenv("VYCTL_CFG", "")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("APPDATA", "")
		t.Setenv("HOME", t.TempDir())
		_, err := Load()
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetString(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	tests := []struct {
		name      string
		namespace string
		key       string
		def       []string
		want      string
		wantErr   bool
	}{
		{name: "top level", key: "api_url", want: "http://localhost:3001"},
		{name: "dotted", key: "colors.even", want: "#cccccc"},
		{name: "namespace wins", namespace: "lab", key: "api_url", want: "http://lab-router:3001"},
		{name: "namespace falls back", namespace: "lab", key: "colors.title", want: "#00ff00"},
		{name: "missing with default", key: "output", def: []string{"text"}, want: "text"},
		{name: "missing without default", key: "output", wantErr: true},
		{name: "wrong type", key: "colors", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load()
			require.NoError(t, err)
			Config.Namespace = tt.namespace
			defer func() { Config.Namespace = "" }()

			got, err := GetString(tt.key, tt.def...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTyped(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	padding, err := GetInt("padding")
	require.NoError(t, err)
	assert.Equal(t, 2, padding)

	ratio, err := GetInt("ratio")
	require.NoError(t, err)
	assert.Equal(t, 1, ratio)

	_, err = GetInt("tags")
	assert.ErrorIs(t, err, ErrWrongType)

	titles, err := GetBool("titles")
	require.NoError(t, err)
	assert.True(t, titles)

	color, err := GetBool("color", true)
	require.NoError(t, err)
	assert.True(t, color)

	interval, err := GetDuration("refresh_interval")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, interval)

	timeout, err := GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	missing, err := GetDuration("missing", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, missing)
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	tags, err := GetStringSlice("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "edge"}, tags)

	_, err = GetStringSlice("padding")
	assert.ErrorIs(t, err, ErrWrongType)

	def, err := GetStringSlice("ssh.defaults", []string{"--titles"})
	require.NoError(t, err)
	assert.Equal(t, []string{"--titles"}, def)
}
