// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultSSHPort      = 22
	DefaultSSHLogLevel  = "INFO"
	DefaultSSHKeepalive = 180

	sshBase = "service/ssh"
)

// SSHLogLevels are the accepted values for loglevel.
var SSHLogLevels = []string{"QUIET", "FATAL", "ERROR", "INFO", "VERBOSE", "DEBUG", "DEBUG1", "DEBUG2", "DEBUG3"}

// SSHSettings is the SSH page. Defaults fill the fields the config omits.
type SSHSettings struct {
	Status                  ServiceStatus `json:"status"`
	Port                    int           `json:"port"`
	DisablePasswordAuth     bool          `json:"disable_password_authentication"`
	DisableHostValidation   bool          `json:"disable_host_validation"`
	LogLevel                string        `json:"loglevel"`
	ClientKeepaliveInterval int           `json:"client_keepalive_interval"`
	ListenAddresses         []string      `json:"listen_addresses"`
	Ciphers                 []string      `json:"ciphers"`
	MACs                    []string      `json:"mac"`
	KeyExchange             []string      `json:"key_exchange"`
	AllowUsers              []string      `json:"allow_users"`
	AllowGroups             []string      `json:"allow_groups"`
	DenyUsers               []string      `json:"deny_users"`
	DenyGroups              []string      `json:"deny_groups"`
}

func (v *Views) SSH(ctx context.Context) (*SSHSettings, error) {
	tree, err := v.tree(ctx)
	if err != nil {
		return nil, err
	}
	ssh := tree.Get(path("service", "ssh"))

	s := &SSHSettings{
		Status:                  ServiceStatus{Active: ssh.Exists(), Source: "config"},
		Port:                    intOr(ssh.Get("port"), DefaultSSHPort),
		DisablePasswordAuth:     ssh.Get("disable-password-authentication").Exists(),
		DisableHostValidation:   ssh.Get("disable-host-validation").Exists(),
		LogLevel:                DefaultSSHLogLevel,
		ClientKeepaliveInterval: intOr(ssh.Get("client-keepalive-interval"), DefaultSSHKeepalive),
		ListenAddresses:         strList(ssh.Get("listen-address")),
		Ciphers:                 strList(ssh.Get("ciphers")),
		MACs:                    strList(ssh.Get("mac")),
		KeyExchange:             strList(ssh.Get("key-exchange")),
		AllowUsers:              strList(ssh.Get(path("access-control", "allow", "user"))),
		AllowGroups:             strList(ssh.Get(path("access-control", "allow", "group"))),
		DenyUsers:               strList(ssh.Get(path("access-control", "deny", "user"))),
		DenyGroups:              strList(ssh.Get(path("access-control", "deny", "group"))),
	}
	if ll := ssh.Get("loglevel").String(); ll != "" {
		s.LogLevel = strings.ToUpper(ll)
	}

	if st, ok := v.daemonStatus(ctx, "ssh", func(ctx context.Context) ([]byte, error) {
		return v.backend.ServiceStatus(ctx, "ssh")
	}); ok {
		s.Status = st
	}

	return s, nil
}

func intOr(r gjson.Result, def int) int {
	if !r.Exists() || r.String() == "" {
		return def
	}
	n, err := strconv.Atoi(r.String())
	if err != nil {
		return def
	}
	return n
}

// SSHEdit carries the fields an operator can change. Nil means unchanged.
type SSHEdit struct {
	Port                    *int
	DisablePasswordAuth     *bool
	LogLevel                *string
	ClientKeepaliveInterval *int
}

// Validate checks the edit without touching the backend.
func (e SSHEdit) Validate() error {
	if e.Port != nil && (*e.Port < 1 || *e.Port > 65535) {
		return validationf("port must be between 1 and 65535, got %d", *e.Port)
	}
	if e.LogLevel != nil && !slices.Contains(SSHLogLevels, strings.ToUpper(*e.LogLevel)) {
		return validationf("loglevel must be one of %s", strings.Join(SSHLogLevels, ", "))
	}
	if e.ClientKeepaliveInterval != nil && *e.ClientKeepaliveInterval < 0 {
		return validationf("client-keepalive-interval must not be negative")
	}
	return nil
}

// UpdateSSH applies the fields of edit that differ from current, one call
// each, and returns a description of every call made.
func (v *Views) UpdateSSH(ctx context.Context, current *SSHSettings, edit SSHEdit) ([]string, error) {
	if err := edit.Validate(); err != nil {
		return nil, err
	}
	if current == nil {
		var err error
		if current, err = v.SSH(ctx); err != nil {
			return nil, err
		}
	}

	var applied []string
	set := func(leaf, value string) error {
		if err := v.backend.Set(ctx, sshBase+"/"+leaf, value); err != nil {
			return fmt.Errorf("failed to update SSH settings: %w", err)
		}
		applied = append(applied, strings.TrimSpace("set "+leaf+" "+value))
		return nil
	}

	if edit.Port != nil && *edit.Port != current.Port {
		if err := set("port", strconv.Itoa(*edit.Port)); err != nil {
			return applied, err
		}
	}

	if edit.DisablePasswordAuth != nil && *edit.DisablePasswordAuth != current.DisablePasswordAuth {
		if *edit.DisablePasswordAuth {
			if err := set("disable-password-authentication", ""); err != nil {
				return applied, err
			}
		} else {
			leaf := "disable-password-authentication"
			if err := v.backend.Delete(ctx, sshBase+"/"+leaf, ""); err != nil {
				return applied, fmt.Errorf("failed to update SSH settings: %w", err)
			}
			applied = append(applied, "delete "+leaf)
		}
	}

	if edit.LogLevel != nil && strings.ToUpper(*edit.LogLevel) != current.LogLevel {
		if err := set("loglevel", strings.ToUpper(*edit.LogLevel)); err != nil {
			return applied, err
		}
	}

	if edit.ClientKeepaliveInterval != nil && *edit.ClientKeepaliveInterval != current.ClientKeepaliveInterval {
		if err := set("client-keepalive-interval", strconv.Itoa(*edit.ClientKeepaliveInterval)); err != nil {
			return applied, err
		}
	}

	return applied, nil
}
