// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/attrs"
	"github.com/staranto/vyctl/internal/backend"
	"github.com/staranto/vyctl/internal/cache"
	"github.com/staranto/vyctl/internal/meta"
	"github.com/staranto/vyctl/internal/output"
	"github.com/staranto/vyctl/internal/views"
)

// ErrNotConfirmed is returned when the operator declines, or cannot be asked.
var ErrNotConfirmed = errors.New("operation not confirmed")

// GetMeta returns the meta.Meta stored in the Metadata of cmd or its nearest
// ancestor. If missing, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// session is the backend stack of one command invocation.
type session struct {
	client  *api.Client
	cache   *cache.Cache
	backend *backend.Cached
	views   *views.Views
}

// newSession builds the client, cache and views from the connection flags.
// Close must be called when the command is done.
func newSession(cmd *cli.Command) *session {
	client := api.New(cmd.String("api-url"), api.WithTimeout(cmd.Duration("timeout")))
	c := cache.New()
	b := backend.New(client, c)
	log.WithField("backend", b.String()).Debug("session")

	return &session{
		client:  client,
		cache:   c,
		backend: b,
		views:   views.New(b, views.WithSavingMethod(cmd.String("saving-method"))),
	}
}

func (s *session) Close() {
	s.cache.Close()
}

// stdout is where command output goes. Tests swap the root Writer.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// emitRows marshals v and hands it to the common output routine.
func emitRows(cmd *cli.Command, v any, al attrs.AttrList) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), stdout(cmd))
}

// notice prints a one-line status message unless structured output was
// requested.
func notice(cmd *cli.Command, format string, args ...any) {
	switch cmd.String("output") {
	case "json", "yaml", "raw":
		return
	}
	fmt.Fprintf(stdout(cmd), format+"\n", args...)
}

// confirm asks prompt on the terminal and accepts y or yes. --yes skips the
// question. A non-interactive stdin is treated as a refusal.
func confirm(cmd *cli.Command, prompt string) error {
	if cmd.Bool("yes") {
		return nil
	}

	in := stdin(cmd)
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("%w: stdin is not a terminal, use --yes", ErrNotConfirmed)
	}

	fmt.Fprintf(stdout(cmd), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return ErrNotConfirmed
}

// firstArg returns the first positional argument, or def.
func firstArg(cmd *cli.Command, def string) string {
	if cmd.NArg() > 0 {
		return cmd.Args().Get(0)
	}
	return def
}

func withMeta(m meta.Meta) map[string]any {
	return map[string]any{"meta": m}
}

// applySaving runs the saving method before a page is read. A failure is
// logged and reported but does not stop the page.
func applySaving(ctx context.Context, cmd *cli.Command, s *session) {
	res, err := s.views.ApplySavingMethod(ctx)
	if err != nil {
		log.WithError(err).Warn("saving method failed")
		return
	}
	if res.Unsaved {
		fmt.Fprintln(stderr(cmd), "There are unsaved changes. Run 'vyctl config save' to persist them.")
	}
}
