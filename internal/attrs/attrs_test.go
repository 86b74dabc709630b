// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

type testSetCase struct {
	Name      string `yaml:"name"`
	Initial   []Attr `yaml:"initial"`
	Value     string `yaml:"value"`
	WantAttrs []Attr `yaml:"wantAttrs"`
	WantErr   bool   `yaml:"wantErr"`
}

type testTransformCase struct {
	Name          string            `yaml:"name"`
	TransformSpec string            `yaml:"transformSpec"`
	Input         any               `yaml:"input"`
	EnvVars       map[string]string `yaml:"envVars"`
	Want          any               `yaml:"want"`
}

func loadTestData(t *testing.T, filename string, v any) {
	t.Helper()
	data, err := testDataFS.ReadFile("testdata/" + filename)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, v))
}

func TestAttrList_Set(t *testing.T) {
	var cases []testSetCase
	loadTestData(t, "set.yaml", &cases)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			list := AttrList(append([]Attr(nil), tc.Initial...))
			err := list.Set(tc.Value)
			if tc.WantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if len(tc.WantAttrs) == 0 {
				assert.Empty(t, list)
				return
			}
			assert.Equal(t, tc.WantAttrs, []Attr(list))
		})
	}
}

func TestAttr_Transform(t *testing.T) {
	var cases []testTransformCase
	loadTestData(t, "transform.yaml", &cases)
	require.NotEmpty(t, cases)

	now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { now = time.Now }()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Setenv("VYCTL_CFG", "testdata/none.yaml")
			for k, v := range tc.EnvVars {
				t.Setenv(k, v)
			}
			attr := Attr{Key: "k", OutputKey: "k", Include: true, TransformSpec: tc.TransformSpec}
			assert.Equal(t, tc.Want, attr.Transform(tc.Input))
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	var list AttrList
	require.NoError(t, list.Set("name,description::l,*::u"))

	list.SetGlobalTransformSpec()

	name, ok := list.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "u,", name.TransformSpec)
	assert.Equal(t, "LAN", name.Transform("lan"))

	desc, _ := list.Lookup("description")
	assert.Equal(t, "u,l", desc.TransformSpec)
	assert.Equal(t, "lan hosts", desc.Transform("LAN Hosts"), "column case beats global case")

	star, _ := list.Lookup("*")
	assert.Equal(t, "u", star.TransformSpec)
}

func TestAttrList_StringRoundTrip(t *testing.T) {
	var list AttrList
	require.NoError(t, list.Set("name,!items,description:desc:20"))
	assert.Equal(t, "name:name:,!items:items:,description:desc:20", list.String())

	var again AttrList
	require.NoError(t, again.Set(list.String()))
	assert.Equal(t, list, again)
}

func TestAttrList_Columns(t *testing.T) {
	var list AttrList
	require.NoError(t, list.Set("type,name,!items,*::l"))

	var keys []string
	for _, c := range list.Columns() {
		keys = append(keys, c.OutputKey)
	}
	assert.Equal(t, []string{"type", "name"}, keys)
	assert.Equal(t, "list", list.Type())
}
