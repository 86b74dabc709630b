// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/config"
)

// NewGlobalFlags returns the presentation flags shared by listing commands.
// ns is the command namespace; a value under ns in the config file beats the
// top level value.
func NewGlobalFlags(ns string, cfg config.Type) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, "color", cfg),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:        "local",
			Usage:       "show timestamps in the configured timezone",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: configSources(ns, "output", cfg),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, "titles", cfg),
			Value:   false,
		},
	}
}

// NewConnectionFlags returns the flags that pick and tune the backend.
func NewConnectionFlags(cfg config.Type, settings config.Settings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"u"},
			Usage:   "VyManager API base URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("VYCTL_API_URL"),
				cli.EnvVar("NEXT_PUBLIC_API_URL"),
			),
			Value: settings.APIURL,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, URLValidator)
			},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: settings.Timeout,
		},
		&cli.StringFlag{
			Name:    "saving-method",
			Usage:   "what to do with unsaved changes before reading a page (confirmation, direct)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("VYCTL_SAVING_METHOD")),
			Value:   settings.SavingMethod,
			Validator: func(value string) error {
				return FlagValidators(value, SavingMethodValidator)
			},
		},
	}
}

func configSources(ns, key string, cfg config.Type) cli.ValueSourceChain {
	return cli.NewValueSourceChain(
		yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)),
		yaml.YAML(key, altsrc.StringSourcer(cfg.Source)),
	)
}

func newYesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "yes",
		Aliases:     []string{"y"},
		Usage:       "do not ask for confirmation",
		HideDefault: true,
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "file",
		Usage: "configuration file on the router",
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

func newRefreshFlag(def time.Duration) *cli.DurationFlag {
	if def <= 0 {
		def = config.DefaultRefreshInterval
	}
	return &cli.DurationFlag{
		Name:  "refresh",
		Usage: "refresh interval of the console cache",
		Value: def,
		Validator: func(d time.Duration) error {
			return FlagValidators(d, PositiveDurationValidator)
		},
	}
}
