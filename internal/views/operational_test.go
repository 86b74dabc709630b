// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package views

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func TestRoutingTable(t *testing.T) {
	fb := newFake(t)
	fb.routes = readTestdata(t, "routingtable.json")

	routes, err := New(fb).RoutingTable(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 3)

	assert.Equal(t, "default", routes[0].VRF)
	assert.Equal(t, "0.0.0.0/0", routes[0].Destination)
	assert.Equal(t, "203.0.113.1", routes[0].Via, "first active next hop wins")
	assert.Equal(t, "eth0", routes[0].Interface)
	assert.Equal(t, int64(1), routes[0].Distance)
	assert.Len(t, routes[0].NextHops, 2)

	assert.Equal(t, "192.168.1.0/24", routes[1].Destination)
	assert.Equal(t, "directly connected", routes[1].Via)
	assert.Equal(t, "eth1", routes[1].Interface)

	assert.Equal(t, "mgmt", routes[2].VRF, "missing vrf falls back to the group name")
	assert.Equal(t, "ospf", routes[2].Protocol)
	assert.Empty(t, routes[2].Via)
	assert.Equal(t, []NextHop{}, routes[2].NextHops)
}

func TestRoutingTable_Empty(t *testing.T) {
	routes, err := New(newFake(t)).RoutingTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Route{}, routes)
}

func TestDHCPLeases(t *testing.T) {
	fb := newFake(t)
	fb.leases = readTestdata(t, "leases.json")

	leases, err := New(fb).DHCPLeases(context.Background())
	require.NoError(t, err)

	var got []string
	for _, l := range leases {
		got = append(got, l.Pool+" "+l.IPAddress+" "+l.Hostname)
	}
	assert.Equal(t, []string{
		"GUEST 10.20.0.50 ",
		"LAN 192.168.1.101 laptop",
		"LAN 192.168.1.120 printer",
	}, got)
	assert.Equal(t, "expired", leases[0].State)
	assert.Equal(t, "aa:bb:cc:00:00:01", leases[1].MACAddress)
}

func TestShow(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		err     error
		want    any
		wantErr string
	}{
		{
			name: "text output is split into lines",
			path: "/interfaces/",
			body: `{"success": true, "data": "Interface  IP Address\neth0       203.0.113.2/24\n", "error": null}`,
			want: []map[string]string{
				{"line": "Interface  IP Address"},
				{"line": "eth0       203.0.113.2/24"},
			},
		},
		{
			name: "null data yields no rows",
			path: "version",
			body: `{"success": true, "data": null, "error": null}`,
			want: []map[string]string{},
		},
		{
			name: "structured data passes through",
			path: "system/uptime",
			body: `{"success": true, "data": {"uptime": "3 days"}, "error": null}`,
			want: map[string]any{"uptime": "3 days"},
		},
		{
			name:    "empty path is rejected",
			path:    "/",
			wantErr: "show path is required",
		},
		{
			name:    "backend error is wrapped",
			path:    "bogus",
			err:     errors.New("boom"),
			wantErr: "error running show bogus: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFake(t)
			fb.showErr = tt.err
			if tt.body != "" {
				fb.show = map[string][]byte{"interfaces": []byte(tt.body), "version": []byte(tt.body), "system/uptime": []byte(tt.body)}
			}

			got, err := New(fb).Show(context.Background(), tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShow_ValidationMakesNoCall(t *testing.T) {
	fb := newFake(t)
	_, err := New(fb).Show(context.Background(), "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, fb.showPaths)
}
