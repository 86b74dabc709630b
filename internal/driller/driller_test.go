// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package driller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestDriller(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		path    string
		want    string
		isNil   bool
		isArray bool
	}{
		{name: "string", json: `{"name": "LAN"}`, path: "name", want: "LAN"},
		{name: "number", json: `{"port": 22}`, path: "port", want: "22"},
		{name: "bool", json: `{"disable_password_authentication": true}`, path: "disable_password_authentication", want: "true"},
		{name: "null", json: `{"description": null}`, path: "description", isNil: true},
		{name: "nested", json: `{"service": {"ssh": {"port": "2222"}}}`, path: "service.ssh.port", want: "2222"},
		{name: "single element array unwrapped", json: `{"items": ["10.0.0.1"]}`, path: "items", want: "10.0.0.1"},
		{name: "single element array drilled through", json: `{"servers": [{"name": "pool.ntp.org"}]}`, path: "servers.name", want: "pool.ntp.org"},
		{name: "multi element array kept", json: `{"items": ["10.0.0.1", "10.0.0.2"]}`, path: "items", isArray: true},
		{name: "index first", json: `{"items": ["22", "80", "443"]}`, path: "items[0]", want: "22"},
		{name: "index last", json: `{"items": ["22", "80", "443"]}`, path: "items[2]", want: "443"},
		{name: "index then key", json: `{"groups": [{"name": "WEB"}, {"name": "MGMT"}]}`, path: "groups[1].name", want: "MGMT"},
		{name: "deep mixed", json: `{"firewall": {"group": [{"address-group": {"LAN": {"address": ["192.0.2.1"]}}}]}}`, path: "firewall.group[0].address-group.LAN.address", want: "192.0.2.1"},
		{name: "hyphenated key", json: `{"listen-address": "192.0.2.10"}`, path: "listen-address", want: "192.0.2.10"},
		{name: "key with wildcard characters", json: `{"a*b": "x", "aXb": "y"}`, path: "a*b", want: "x"},
		{name: "missing key", json: `{"name": "LAN"}`, path: "missing", isNil: true},
		{name: "nested missing key", json: `{"service": {"ntp": {}}}`, path: "service.ntp.server", isNil: true},
		{name: "index out of range", json: `{"items": ["a", "b"]}`, path: "items[10]", isNil: true},
		{name: "index into empty array", json: `{"items": []}`, path: "items[0]", isNil: true},
		{name: "index into scalar", json: `{"items": "a"}`, path: "items[0]", isNil: true},
		{name: "empty object", json: `{}`, path: "any", isNil: true},
		{name: "empty path returns document", json: `{"a": 1}`, path: "", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Driller(tt.json, tt.path)

			if tt.isNil {
				assert.True(t, !result.Exists() || result.Type == gjson.Null, "got %v", result.Value())
				return
			}

			if !assert.True(t, result.Exists()) {
				return
			}

			if tt.isArray {
				assert.True(t, result.IsArray(), "got %v", result.Value())
				return
			}

			assert.Equal(t, tt.want, result.String())
		})
	}
}

func BenchmarkDriller(b *testing.B) {
	doc := `{"firewall": {"group": {"address-group": {"LAN": {"address": ["192.0.2.1", "192.0.2.2"]}}}}}`
	for i := 0; i < b.N; i++ {
		Driller(doc, "firewall.group.address-group.LAN.address[1]")
	}
}
