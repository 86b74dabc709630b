// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/aws"
	"github.com/staranto/vyctl/internal/meta"
	"github.com/staranto/vyctl/internal/output"
	"github.com/staranto/vyctl/internal/snapshot"
	"github.com/staranto/vyctl/internal/views"
)

// configPath joins the positional arguments into a slash separated path.
// "service ntp" and "service/ntp" name the same node.
func configPath(args []string) string {
	var segs []string
	for _, a := range args {
		for _, s := range strings.FieldsFunc(a, func(r rune) bool { return r == '/' || r == ' ' }) {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, "/")
}

func ConfigShowAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	s := newSession(cmd)
	defer s.Close()

	applySaving(ctx, cmd, s)

	path := configPath(cmd.Args().Slice())
	body, err := s.backend.Config(ctx, path)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	data := api.Data(body)
	if !data.Exists() {
		return fmt.Errorf("error loading configuration: no data for %q", path)
	}
	return output.RenderDocument([]byte(data.Raw), path, cmd.String("output"), stdout(cmd))
}

func ConfigSetAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("%w: path is required", views.ErrValidation)
	}

	s := newSession(cmd)
	defer s.Close()

	path, value := configPath(cmd.Args().Slice()[:1]), strings.Join(cmd.Args().Slice()[1:], " ")
	if err := s.backend.Set(ctx, path, value); err != nil {
		return err
	}
	notice(cmd, "%s", views.Change{Op: "set", Path: path, Value: value})
	return nil
}

func ConfigDeleteAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("%w: path is required", views.ErrValidation)
	}

	s := newSession(cmd)
	defer s.Close()

	path, value := configPath(cmd.Args().Slice()[:1]), strings.Join(cmd.Args().Slice()[1:], " ")
	if err := s.backend.Delete(ctx, path, value); err != nil {
		return err
	}
	notice(cmd, "%s", views.Change{Op: "delete", Path: path, Value: value})
	return nil
}

func ConfigSaveAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	file := cmd.String("file")
	if err := s.backend.Save(ctx, file); err != nil {
		return err
	}
	if err := s.backend.MarkSaved(ctx); err != nil {
		log.WithError(err).Warn("configuration saved but the unsaved flag was not reset")
	}

	if file == "" {
		file = "the boot configuration"
	}
	notice(cmd, "Configuration saved to %s.", file)
	return nil
}

func ConfigLoadAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.String("file")
	if file == "" {
		return fmt.Errorf("%w: --file is required", views.ErrValidation)
	}
	if err := confirm(cmd, fmt.Sprintf("Load %s and replace the running configuration?", file)); err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	if err := s.backend.Load(ctx, file); err != nil {
		return err
	}
	notice(cmd, "Configuration loaded from %s.", file)
	return nil
}

// ConfigEditAction opens the subtree in $EDITOR, or reads the edited document
// from --from, shows the diff and applies it as set and delete calls.
func ConfigEditAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	path := configPath(cmd.Args().Slice())
	before, err := s.views.ConfigDocument(ctx, path)
	if err != nil {
		return err
	}

	var after []byte
	if from := cmd.String("from"); from != "" {
		if after, err = os.ReadFile(from); err != nil {
			return err
		}
	} else if after, err = editDocument(ctx, cmd, before); err != nil {
		return err
	}

	edited, err := views.ParseDocument(after)
	if err != nil {
		return err
	}
	original, err := views.ParseDocument(before)
	if err != nil {
		return err
	}

	diff, modified, err := views.DiffDocuments(before, after, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !modified {
		notice(cmd, "No changes.")
		return nil
	}

	changes := views.PlanChanges(path, original, edited)
	w := stdout(cmd)
	fmt.Fprint(w, diff)
	for _, c := range changes {
		fmt.Fprintln(w, c)
	}

	if err := confirm(cmd, fmt.Sprintf("Apply %d changes?", len(changes))); err != nil {
		return err
	}

	n, err := s.views.ApplyChanges(ctx, changes)
	if err != nil {
		return fmt.Errorf("applied %d of %d changes: %w", n, len(changes), err)
	}
	notice(cmd, "Applied %d changes.", n)
	return nil
}

// editDocument round trips doc through the operator's editor.
func editDocument(ctx context.Context, cmd *cli.Command, doc []byte) ([]byte, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	f, err := os.CreateTemp("", "vyctl-*.json")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(doc); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	parts := strings.Fields(editor)
	c := exec.CommandContext(ctx, parts[0], append(parts[1:], f.Name())...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, stderr(cmd)
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("editor %s: %w", editor, err)
	}

	return os.ReadFile(f.Name())
}

func ConfigExportAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	path := configPath(cmd.Args().Slice())
	snap, err := snapshot.Take(ctx, s.backend, path, s.client.BaseURL(), time.Now())
	if err != nil {
		return err
	}

	d, err := snapshot.Export(ctx, snap, cmd.String("dest"),
		snapshot.WithStdout(stdout(cmd)),
		snapshot.WithAWSOptions(
			aws.WithProfile(cmd.String("aws-profile")),
			aws.WithRegion(cmd.String("aws-region")),
			aws.WithEndpoint(cmd.String("s3-endpoint")),
		),
	)
	if err != nil {
		return err
	}
	if d.Scheme != "stdout" {
		notice(cmd, "Snapshot %s written to %s.", snap.ID, d)
	}
	return nil
}

// envRow is one line of `config env`.
type envRow struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

func ConfigEnvAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	st := m.Settings

	cfgSource := m.Config.Source
	if cfgSource == "" {
		cfgSource = "none"
	}

	rows := []envRow{
		{Name: "config_file", Value: cfgSource},
		{Name: "api_url", Value: cmd.String("api-url"), Source: st.APIURLSource},
		{Name: "timeout", Value: cmd.Duration("timeout").String()},
		{Name: "refresh_interval", Value: st.RefreshInterval.String()},
		{Name: "saving_method", Value: cmd.String("saving-method")},
		{Name: "cors.allow_origin", Value: st.CORS.AllowOrigin},
		{Name: "cors.allow_methods", Value: st.CORS.AllowMethods},
		{Name: "cors.allow_headers", Value: st.CORS.AllowHeaders},
	}

	al, err := BuildAttrs(cmd, "name", "value", "source")
	if err != nil {
		return err
	}
	return emitRows(cmd, rows, al)
}

func ConfigCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	cfg := meta.Config
	outputFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: configSources("config", "output", cfg),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		}
	}
	colorFlag := &cli.BoolWithInverseFlag{
		Name:    "color",
		Aliases: []string{"c"},
		Usage:   "color the diff",
		Sources: configSources("config", "color", cfg),
	}

	return &cli.Command{
		Name:     "config",
		Usage:    "configuration tree operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "show the configuration tree or a subtree",
				UsageText: "vyctl config show [path]",
				Flags:     []cli.Flag{outputFlag()},
				Action:    ConfigShowAction,
			},
			{
				Name:      "set",
				Usage:     "set a configuration value",
				UsageText: "vyctl config set <path> [value]",
				Flags:     []cli.Flag{outputFlag()},
				Action:    ConfigSetAction,
			},
			{
				Name:      "delete",
				Usage:     "delete a configuration node or value",
				UsageText: "vyctl config delete <path> [value]",
				Flags:     []cli.Flag{outputFlag()},
				Action:    ConfigDeleteAction,
			},
			{
				Name:   "save",
				Usage:  "save the running configuration",
				Flags:  []cli.Flag{newFileFlag(), outputFlag()},
				Action: ConfigSaveAction,
			},
			{
				Name:   "load",
				Usage:  "load a configuration file into the running configuration",
				Flags:  []cli.Flag{newFileFlag(), newYesFlag(), outputFlag()},
				Action: ConfigLoadAction,
			},
			{
				Name:      "edit",
				Usage:     "edit a configuration subtree as JSON",
				UsageText: "vyctl config edit [path] [--from FILE] [--yes]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "read the edited document from a file instead of $EDITOR",
					},
					colorFlag,
					outputFlag(),
					newYesFlag(),
				},
				Action: ConfigEditAction,
			},
			{
				Name:      "export",
				Usage:     "export a configuration snapshot to a file, stdout or S3",
				UsageText: "vyctl config export [path] --dest FILE|-|s3://bucket/key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dest",
						Aliases:  []string{"d"},
						Usage:    "destination: a file, - for stdout, or s3://bucket/key",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "aws-profile",
						Usage:   "AWS shared config profile",
						Sources: cli.NewValueSourceChain(yaml.YAML("export.aws_profile", altsrc.StringSourcer(cfg.Source))),
					},
					&cli.StringFlag{
						Name:    "aws-region",
						Usage:   "AWS region of the bucket",
						Sources: cli.NewValueSourceChain(yaml.YAML("export.aws_region", altsrc.StringSourcer(cfg.Source))),
					},
					&cli.StringFlag{
						Name:    "s3-endpoint",
						Usage:   "S3 compatible endpoint URL",
						Sources: cli.NewValueSourceChain(yaml.YAML("export.s3_endpoint", altsrc.StringSourcer(cfg.Source))),
					},
					outputFlag(),
				},
				Action: ConfigExportAction,
			},
			{
				Name:   "env",
				Usage:  "show the resolved client settings",
				Flags:  NewGlobalFlags("config", cfg),
				Action: ConfigEnvAction,
			},
		},
	}
}
