// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// GroupTypes maps each firewall group type to the property holding its
// members.
var GroupTypes = map[string]string{
	"address-group":   "address",
	"network-group":   "network",
	"port-group":      "port",
	"interface-group": "interface",
}

// GroupTypeNames returns the group types in display order.
func GroupTypeNames() []string {
	return []string{"address-group", "network-group", "port-group", "interface-group"}
}

// FirewallGroup is one row of the groups page.
type FirewallGroup struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Items       []string `json:"items"`
	Description string   `json:"description,omitempty"`
}

func groupBase(typ, name string) string {
	return "firewall/group/" + typ + "/" + name
}

// FirewallGroups lists groups, restricted to typ when it is not empty.
func (v *Views) FirewallGroups(ctx context.Context, typ string) ([]FirewallGroup, error) {
	if typ != "" {
		if _, ok := GroupTypes[typ]; !ok {
			return nil, validationf("unknown group type %q", typ)
		}
	}

	tree, err := v.tree(ctx)
	if err != nil {
		return nil, err
	}

	groups := []FirewallGroup{}
	for _, t := range GroupTypeNames() {
		if typ != "" && t != typ {
			continue
		}
		prop := GroupTypes[t]
		tree.Get(path("firewall", "group", t)).ForEach(func(name, body gjson.Result) bool {
			groups = append(groups, FirewallGroup{
				Type:        t,
				Name:        name.String(),
				Items:       strList(body.Get(prop)),
				Description: body.Get("description").String(),
			})
			return true
		})
	}

	order := map[string]int{}
	for i, t := range GroupTypeNames() {
		order[t] = i
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Type != groups[j].Type {
			return order[groups[i].Type] < order[groups[j].Type]
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// CreateFirewallGroup creates the group and then adds each item with its own
// call.
func (v *Views) CreateFirewallGroup(ctx context.Context, typ, name string, items []string) error {
	prop, ok := GroupTypes[typ]
	if !ok {
		return validationf("unknown group type %q", typ)
	}
	name = strings.TrimSpace(name)

	var clean []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			clean = append(clean, it)
		}
	}
	if name == "" || len(clean) == 0 {
		return validationf("group name and items are required")
	}

	base := groupBase(typ, name)
	if err := v.backend.Set(ctx, base, ""); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	for _, it := range clean {
		if err := v.backend.Set(ctx, base+"/"+prop, it); err != nil {
			return fmt.Errorf("failed to add %s to %s %s: %w", it, typ, name, err)
		}
	}
	return nil
}

func (v *Views) DeleteFirewallGroup(ctx context.Context, typ, name string) error {
	if _, ok := GroupTypes[typ]; !ok {
		return validationf("unknown group type %q", typ)
	}
	if strings.TrimSpace(name) == "" {
		return validationf("group name is required")
	}
	if err := v.backend.Delete(ctx, groupBase(typ, name), ""); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
