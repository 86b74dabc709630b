// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package views

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/backend"
)

// fakeBackend serves a fixed config tree and records mutations.
type fakeBackend struct {
	tree        []byte
	configErr   error
	unsaved     bool
	unsavedErr  error
	ntpStatus   []byte
	ntpErr      error
	sshStatus   []byte
	sshErr      error
	failOn      string
	calls       []string
	powerCalled string
	routes      []byte
	leases      []byte
	show        map[string][]byte
	showErr     error
	showPaths   []string
}

var _ backend.Backend = (*fakeBackend)(nil)

func newFake(t *testing.T) *fakeBackend {
	t.Helper()
	tree, err := os.ReadFile(filepath.Join("testdata", "config.json"))
	require.NoError(t, err)
	return &fakeBackend{
		tree:   tree,
		ntpErr: &api.Error{Status: 404},
		sshErr: &api.Error{Status: 404},
	}
}

func (f *fakeBackend) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.HasPrefix(call, f.failOn) {
		return errors.New("commit failed")
	}
	return nil
}

func (f *fakeBackend) Config(_ context.Context, path string) ([]byte, error) {
	if f.configErr != nil {
		return nil, f.configErr
	}
	if path == "" {
		return f.tree, nil
	}
	sub := api.Data(f.tree).Get(strings.ReplaceAll(path, "/", "."))
	return []byte(`{"success": true, "data": ` + sub.Raw + `}`), nil
}

func (f *fakeBackend) Show(_ context.Context, path string) ([]byte, error) {
	f.showPaths = append(f.showPaths, path)
	if f.showErr != nil {
		return nil, f.showErr
	}
	if body, ok := f.show[path]; ok {
		return body, nil
	}
	return []byte(`{"success": true, "data": null, "error": null}`), nil
}

func (f *fakeBackend) RoutingTable(context.Context) ([]byte, error) {
	if f.routes == nil {
		return []byte(`{}`), nil
	}
	return f.routes, nil
}

func (f *fakeBackend) DHCPLeases(context.Context) ([]byte, error) {
	if f.leases == nil {
		return []byte(`{}`), nil
	}
	return f.leases, nil
}

func (f *fakeBackend) UnsavedChanges(context.Context) (bool, error) {
	return f.unsaved, f.unsavedErr
}

func (f *fakeBackend) Set(_ context.Context, path, value string) error {
	return f.record(strings.TrimSpace("set " + path + " " + value))
}

func (f *fakeBackend) Delete(_ context.Context, path, value string) error {
	return f.record(strings.TrimSpace("delete " + path + " " + value))
}

func (f *fakeBackend) Save(_ context.Context, file string) error {
	return f.record(strings.TrimSpace("save " + file))
}

func (f *fakeBackend) Load(_ context.Context, file string) error {
	return f.record("load " + file)
}

func (f *fakeBackend) MarkSaved(context.Context) error {
	return f.record("mark-saved")
}

func (f *fakeBackend) Poweroff(context.Context) error {
	f.powerCalled = "poweroff"
	return f.record("poweroff")
}

func (f *fakeBackend) Reboot(context.Context) error {
	f.powerCalled = "reboot"
	return f.record("reboot")
}

func (f *fakeBackend) NTPStatus(context.Context) ([]byte, error) {
	return f.ntpStatus, f.ntpErr
}

func (f *fakeBackend) ServiceStatus(context.Context, string) ([]byte, error) {
	return f.sshStatus, f.sshErr
}

func (f *fakeBackend) String() string { return "fake" }
