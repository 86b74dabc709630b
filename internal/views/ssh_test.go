// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSSH_Settings(t *testing.T) {
	v := New(newFake(t))

	s, err := v.SSH(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ServiceStatus{Active: true, Source: "config"}, s.Status)
	assert.Equal(t, 2222, s.Port)
	assert.True(t, s.DisablePasswordAuth)
	assert.False(t, s.DisableHostValidation)
	assert.Equal(t, DefaultSSHLogLevel, s.LogLevel)
	assert.Equal(t, DefaultSSHKeepalive, s.ClientKeepaliveInterval)
	assert.Equal(t, []string{"192.168.1.1"}, s.ListenAddresses, "single value is promoted to a list")
	assert.Equal(t, []string{"aes256-ctr", "aes128-ctr"}, s.Ciphers)
	assert.Equal(t, []string{"vyos"}, s.AllowUsers)
	assert.Empty(t, s.DenyUsers)
}

func TestSSH_Defaults(t *testing.T) {
	fb := newFake(t)
	fb.tree = []byte(`{"success": true, "data": {"system": {}}}`)
	fb.sshStatus, fb.sshErr = []byte(`{"success": true, "data": {"active": true, "pid": 811}}`), nil

	s, err := New(fb).SSH(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSSHPort, s.Port)
	assert.False(t, s.DisablePasswordAuth)
	assert.Equal(t, "INFO", s.LogLevel)
	assert.Equal(t, 180, s.ClientKeepaliveInterval)
	assert.True(t, s.Status.Active)
	assert.Equal(t, "daemon", s.Status.Source)
	assert.EqualValues(t, 811, s.Status.Detail["pid"])
}

func TestUpdateSSH(t *testing.T) {
	current := &SSHSettings{Port: 22, LogLevel: "INFO", ClientKeepaliveInterval: 180, DisablePasswordAuth: true}

	tests := []struct {
		name      string
		edit      SSHEdit
		wantCalls []string
		wantErr   bool
	}{
		{
			name:      "nothing changed",
			edit:      SSHEdit{Port: ptr(22), LogLevel: ptr("info"), ClientKeepaliveInterval: ptr(180), DisablePasswordAuth: ptr(true)},
			wantCalls: nil,
		},
		{
			name:      "port only",
			edit:      SSHEdit{Port: ptr(2222)},
			wantCalls: []string{"set service/ssh/port 2222"},
		},
		{
			name:      "re-enable password auth deletes the node",
			edit:      SSHEdit{DisablePasswordAuth: ptr(false)},
			wantCalls: []string{"delete service/ssh/disable-password-authentication"},
		},
		{
			name: "everything",
			edit: SSHEdit{Port: ptr(2200), LogLevel: ptr("verbose"), ClientKeepaliveInterval: ptr(60), DisablePasswordAuth: ptr(false)},
			wantCalls: []string{
				"set service/ssh/port 2200",
				"delete service/ssh/disable-password-authentication",
				"set service/ssh/loglevel VERBOSE",
				"set service/ssh/client-keepalive-interval 60",
			},
		},
		{name: "bad port", edit: SSHEdit{Port: ptr(70000)}, wantErr: true},
		{name: "bad loglevel", edit: SSHEdit{LogLevel: ptr("chatty")}, wantErr: true},
		{name: "negative keepalive", edit: SSHEdit{ClientKeepaliveInterval: ptr(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFake(t)
			applied, err := New(fb).UpdateSSH(context.Background(), current, tt.edit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				assert.Empty(t, fb.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, fb.calls)
			assert.Len(t, applied, len(tt.wantCalls))
		})
	}
}

func TestUpdateSSH_LoadsCurrent(t *testing.T) {
	fb := newFake(t)

	applied, err := New(fb).UpdateSSH(context.Background(), nil, SSHEdit{Port: ptr(2222), DisablePasswordAuth: ptr(true)})
	require.NoError(t, err)
	assert.Empty(t, applied, "values already match the config")
	assert.Empty(t, fb.calls)
}

func TestUpdateSSH_EnablePasswordDisable(t *testing.T) {
	fb := newFake(t)
	current := &SSHSettings{Port: 22, LogLevel: "INFO", ClientKeepaliveInterval: 180}

	applied, err := New(fb).UpdateSSH(context.Background(), current, SSHEdit{DisablePasswordAuth: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"set disable-password-authentication"}, applied)
	assert.Equal(t, []string{"set service/ssh/disable-password-authentication"}, fb.calls)
}
