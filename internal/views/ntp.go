// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/vyctl/internal/api"
)

// ServiceStatus is the running state of a service. Source is "config" when
// derived from the presence of the service's config node and "daemon" when
// reported by the backend.
type ServiceStatus struct {
	Active bool           `json:"active"`
	Source string         `json:"source"`
	Detail map[string]any `json:"detail,omitempty"`
}

type NTPServer struct {
	Name     string `json:"name"`
	Pool     bool   `json:"pool"`
	NoSelect bool   `json:"noselect"`
	Prefer   bool   `json:"prefer"`
}

// NTPPage is everything the NTP page shows.
type NTPPage struct {
	Status          ServiceStatus `json:"status"`
	Servers         []NTPServer   `json:"servers"`
	AllowClients    []string      `json:"allow_clients"`
	ListenAddresses []string      `json:"listen_addresses"`
}

func (v *Views) NTP(ctx context.Context) (*NTPPage, error) {
	tree, err := v.tree(ctx)
	if err != nil {
		return nil, err
	}
	ntp := tree.Get(path("service", "ntp"))

	page := &NTPPage{
		Status:          ServiceStatus{Active: ntp.Exists(), Source: "config"},
		Servers:         []NTPServer{},
		AllowClients:    append(strList(ntp.Get(path("allow-clients", "address"))), strList(ntp.Get(path("allow-clients", "network")))...),
		ListenAddresses: strList(ntp.Get("listen-address")),
	}

	ntp.Get("server").ForEach(func(name, body gjson.Result) bool {
		page.Servers = append(page.Servers, NTPServer{
			Name:     name.String(),
			Pool:     body.Get("pool").Exists(),
			NoSelect: body.Get("noselect").Exists(),
			Prefer:   body.Get("prefer").Exists(),
		})
		return true
	})
	sort.Slice(page.Servers, func(i, j int) bool { return page.Servers[i].Name < page.Servers[j].Name })

	if st, ok := v.daemonStatus(ctx, "ntp", func(ctx context.Context) ([]byte, error) {
		return v.backend.NTPStatus(ctx)
	}); ok {
		page.Status = st
	}

	return page, nil
}

func (v *Views) NTPStatus(ctx context.Context) (ServiceStatus, error) {
	page, err := v.NTP(ctx)
	if err != nil {
		return ServiceStatus{}, err
	}
	return page.Status, nil
}

func (v *Views) NTPServers(ctx context.Context) ([]NTPServer, error) {
	page, err := v.NTP(ctx)
	if err != nil {
		return nil, err
	}
	return page.Servers, nil
}

// daemonStatus asks the backend for a service's status. A 404 or any other
// failure leaves the config-derived status in place.
func (v *Views) daemonStatus(ctx context.Context, name string, fetch func(context.Context) ([]byte, error)) (ServiceStatus, bool) {
	body, err := fetch(ctx)
	if err != nil {
		if !api.IsNotFound(err) {
			log.WithError(err).WithField("service", name).Warn("error fetching status")
		}
		return ServiceStatus{}, false
	}

	data := api.Data(body)
	st := ServiceStatus{Active: data.Get("active").Bool(), Source: "daemon"}
	if m, ok := data.Value().(map[string]any); ok {
		st.Detail = m
	}
	return st, true
}

// AddNTPServer sets the server node, then one call per enabled flag.
func (v *Views) AddNTPServer(ctx context.Context, srv NTPServer) error {
	srv.Name = strings.TrimSpace(srv.Name)
	if srv.Name == "" {
		return validationf("server name or IP address is required")
	}

	base := "service/ntp/server/" + srv.Name
	if err := v.backend.Set(ctx, base, ""); err != nil {
		return fmt.Errorf("failed to add NTP server: %w", err)
	}

	for _, flag := range []struct {
		on   bool
		name string
	}{
		{srv.Pool, "pool"},
		{srv.NoSelect, "noselect"},
		{srv.Prefer, "prefer"},
	} {
		if !flag.on {
			continue
		}
		if err := v.backend.Set(ctx, base+"/"+flag.name, ""); err != nil {
			return fmt.Errorf("failed to add NTP server: %w", err)
		}
	}
	return nil
}

func (v *Views) RemoveNTPServer(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationf("server name or IP address is required")
	}
	if err := v.backend.Delete(ctx, "service/ntp/server/"+name, ""); err != nil {
		return fmt.Errorf("failed to remove NTP server: %w", err)
	}
	return nil
}
