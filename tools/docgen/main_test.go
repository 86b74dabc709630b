// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# vyctl ntp\n\n" +
	"## Summary\n\nShow NTP status and\nmanage servers.\n\nMore prose.\n\n" +
	"## Quick examples\n\n```\n# List servers\nvyctl ntp servers\n\nvyctl   ntp status\n```\n"

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{name: "section", md: sample, want: "Show NTP status and manage servers."},
		{name: "title fallback", md: "# vyctl power\n\nBody.\n", want: "vyctl power."},
		{name: "empty", md: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summary(tt.md))
		})
	}
}

func TestExamples(t *testing.T) {
	assert.Equal(t, []example{
		{Desc: "List servers", Cmd: "vyctl ntp servers"},
		{Desc: "Example", Cmd: "vyctl ntp status"},
	}, examples(sample))
	assert.Nil(t, examples("# vyctl x\n"))
}

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("power", "", nil)
	assert.Contains(t, got, "# vyctl-power\n\n> vyctl power\n")
	assert.Contains(t, got, "`vyctl power --help`")
}

func TestWriteFile_OnlyIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, writeFile(path, []byte("one\n"), true))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(path, info.ModTime().Add(-1e9), info.ModTime().Add(-1e9)))
	before, _ := os.Stat(path)

	require.NoError(t, writeFile(path, []byte("one"), true))
	after, _ := os.Stat(path)
	assert.Equal(t, before.ModTime(), after.ModTime())

	require.NoError(t, writeFile(path, []byte("two"), true))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(raw))
}
