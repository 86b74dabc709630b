// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/vyctl/internal/api"
)

type NextHop struct {
	IP                string `json:"ip"`
	Interface         string `json:"interface"`
	Active            bool   `json:"active"`
	DirectlyConnected bool   `json:"directly_connected"`
}

// Route is one entry of the routing table. Via and Interface summarize the
// first active next hop so a route fits on one row.
type Route struct {
	VRF         string    `json:"vrf"`
	Destination string    `json:"destination"`
	Protocol    string    `json:"protocol"`
	Selected    bool      `json:"selected"`
	Installed   bool      `json:"installed"`
	Distance    int64     `json:"distance"`
	Metric      int64     `json:"metric"`
	Uptime      string    `json:"uptime"`
	Via         string    `json:"via"`
	Interface   string    `json:"interface"`
	NextHops    []NextHop `json:"nexthops"`
}

type Lease struct {
	Pool       string `json:"pool"`
	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`
	Hostname   string `json:"hostname"`
	State      string `json:"state"`
	LeaseStart string `json:"lease_start"`
	LeaseEnd   string `json:"lease_end"`
	Remaining  string `json:"remaining"`
	Origin     string `json:"origin"`
}

// RoutingTable flattens routes_by_vrf into one list ordered by VRF and
// destination.
func (v *Views) RoutingTable(ctx context.Context) ([]Route, error) {
	body, err := v.backend.RoutingTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading routing table: %w", err)
	}

	routes := []Route{}
	gjson.GetBytes(body, "routes_by_vrf").ForEach(func(vrf, list gjson.Result) bool {
		for _, r := range list.Array() {
			route := Route{
				VRF:         r.Get("vrf").String(),
				Destination: r.Get("destination").String(),
				Protocol:    r.Get("protocol").String(),
				Selected:    r.Get("selected").Bool(),
				Installed:   r.Get("installed").Bool(),
				Distance:    r.Get("distance").Int(),
				Metric:      r.Get("metric").Int(),
				Uptime:      r.Get("uptime").String(),
				NextHops:    []NextHop{},
			}
			if route.VRF == "" {
				route.VRF = vrf.String()
			}
			for _, nh := range r.Get("nexthops").Array() {
				route.NextHops = append(route.NextHops, NextHop{
					IP:                nh.Get("ip").String(),
					Interface:         nh.Get("interface").String(),
					Active:            nh.Get("active").Bool(),
					DirectlyConnected: nh.Get("directly_connected").Bool(),
				})
			}
			route.Via, route.Interface = summarizeNextHops(route.NextHops)
			routes = append(routes, route)
		}
		return true
	})

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].VRF != routes[j].VRF {
			return routes[i].VRF < routes[j].VRF
		}
		return routes[i].Destination < routes[j].Destination
	})
	return routes, nil
}

func summarizeNextHops(hops []NextHop) (string, string) {
	if len(hops) == 0 {
		return "", ""
	}
	pick := hops[0]
	for _, nh := range hops {
		if nh.Active {
			pick = nh
			break
		}
	}
	via := pick.IP
	if pick.DirectlyConnected {
		via = "directly connected"
	}
	return via, pick.Interface
}

// DHCPLeases flattens the per-pool lease lists, ordered by pool and address.
func (v *Views) DHCPLeases(ctx context.Context) ([]Lease, error) {
	body, err := v.backend.DHCPLeases(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading DHCP leases: %w", err)
	}

	leases := []Lease{}
	gjson.GetBytes(body, "leases").ForEach(func(pool, list gjson.Result) bool {
		for _, l := range list.Array() {
			lease := Lease{
				Pool:       l.Get("pool").String(),
				IPAddress:  l.Get("ip_address").String(),
				MACAddress: l.Get("mac_address").String(),
				Hostname:   l.Get("hostname").String(),
				State:      l.Get("state").String(),
				LeaseStart: l.Get("lease_start").String(),
				LeaseEnd:   l.Get("lease_end").String(),
				Remaining:  l.Get("remaining").String(),
				Origin:     l.Get("origin").String(),
			}
			if lease.Pool == "" {
				lease.Pool = pool.String()
			}
			leases = append(leases, lease)
		}
		return true
	})

	sort.SliceStable(leases, func(i, j int) bool {
		if leases[i].Pool != leases[j].Pool {
			return leases[i].Pool < leases[j].Pool
		}
		return leases[i].IPAddress < leases[j].IPAddress
	})
	return leases, nil
}

// Show runs an operational-mode show command. Text output is returned one
// row per line under "line"; structured output is returned as is.
func (v *Views) Show(ctx context.Context, path string) (any, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, validationf("show path is required")
	}

	body, err := v.backend.Show(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error running show %s: %w", strings.ReplaceAll(path, "/", " "), err)
	}

	data := api.Data(body)
	if data.Type == gjson.String || !data.Exists() || data.Type == gjson.Null {
		rows := []map[string]string{}
		for _, line := range strings.Split(strings.TrimRight(data.String(), "\n"), "\n") {
			if line == "" && len(rows) == 0 {
				continue
			}
			rows = append(rows, map[string]string{"line": line})
		}
		return rows, nil
	}
	return data.Value(), nil
}
