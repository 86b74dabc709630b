// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/vyctl/internal/command"
	"github.com/staranto/vyctl/internal/config"
	mylog "github.com/staranto/vyctl/internal/log"
	"github.com/staranto/vyctl/internal/version"
)

var ctx = context.Background()

// groups are the commands whose second word is a subcommand.
var groups = []string{"cache", "config", "dhcp", "firewall", "ntp", "power", "routing", "ssh"}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set (or the implicit @defaults) into the flags
// configured under <command>.<set>, placed right after the command words.
func mangleArguments(args []string) []string {
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	idx := 2
	if slices.Contains(groups, args[1]) && len(args) > 2 && !strings.HasPrefix(args[2], "-") && !strings.HasPrefix(args[2], "@") {
		idx = 3
	}

	set := "defaults"
	out := make([]string, 0, len(args))
	for i, a := range args {
		if i > 1 && strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			continue
		}
		out = append(out, a)
	}
	if idx > len(out) {
		idx = len(out)
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}
	out = append(out[:idx], append(expanded, out[idx:]...)...)

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, out)
	return out
}
