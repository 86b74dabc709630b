// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package snapshot captures a configuration subtree with its provenance and
// writes it to a local file, stdout or an S3 object.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/aws"
	"github.com/staranto/vyctl/internal/backend"
)

var ErrDestination = errors.New("invalid snapshot destination")

// Snapshot is the exported document.
type Snapshot struct {
	ID      uuid.UUID       `json:"id"`
	TakenAt time.Time       `json:"taken_at"`
	Source  string          `json:"source"`
	Path    string          `json:"path"`
	Config  json.RawMessage `json:"config"`
}

// ConfigReader is satisfied by backend.Backend.
type ConfigReader interface {
	Config(ctx context.Context, path string) ([]byte, error)
}

var _ ConfigReader = (backend.Backend)(nil)

// Take reads the subtree at path through b. source records where it came
// from, normally the API base URL.
func Take(ctx context.Context, b ConfigReader, path, source string, now time.Time) (Snapshot, error) {
	body, err := b.Config(ctx, path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error loading configuration: %w", err)
	}

	data := api.Data(body)
	if !data.Exists() {
		return Snapshot{}, fmt.Errorf("error loading configuration: no data for %q", path)
	}

	return Snapshot{
		ID:      uuid.New(),
		TakenAt: now.UTC(),
		Source:  source,
		Path:    strings.Trim(path, "/"),
		Config:  json.RawMessage(data.Raw),
	}, nil
}

// Encode renders s as indented JSON.
func (s Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Destination is a parsed --dest value.
type Destination struct {
	// Scheme is "file", "s3" or "stdout".
	Scheme string
	Path   string
	Bucket string
	Key    string
}

func (d Destination) String() string {
	switch d.Scheme {
	case "s3":
		return "s3://" + d.Bucket + "/" + d.Key
	case "stdout":
		return "-"
	}
	return d.Path
}

// ParseDestination accepts "-", a file path, file://path or s3://bucket/key.
// An S3 key ending in / gets a generated vyctl-<id>.json name.
func ParseDestination(dest string, id uuid.UUID) (Destination, error) {
	switch {
	case dest == "":
		return Destination{}, fmt.Errorf("%w: empty", ErrDestination)
	case dest == "-":
		return Destination{Scheme: "stdout"}, nil
	case strings.HasPrefix(dest, "s3://"):
		u, err := url.Parse(dest)
		if err != nil {
			return Destination{}, fmt.Errorf("%w: %w", ErrDestination, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" {
			return Destination{}, fmt.Errorf("%w: %s has no bucket", ErrDestination, dest)
		}
		if key == "" || strings.HasSuffix(key, "/") {
			key += "vyctl-" + id.String() + ".json"
		}
		return Destination{Scheme: "s3", Bucket: u.Host, Key: key}, nil
	case strings.HasPrefix(dest, "file://"):
		return Destination{Scheme: "file", Path: strings.TrimPrefix(dest, "file://")}, nil
	case strings.Contains(dest, "://"):
		return Destination{}, fmt.Errorf("%w: unsupported scheme in %s", ErrDestination, dest)
	}
	return Destination{Scheme: "file", Path: dest}, nil
}

// PutObjectAPI is the slice of the S3 client that Export needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Option func(*exporter)

type exporter struct {
	s3      PutObjectAPI
	awsOpts []aws.Option
	stdout  io.Writer
}

// WithS3Client supplies the S3 client instead of loading one from the
// environment.
func WithS3Client(c PutObjectAPI) Option {
	return func(e *exporter) { e.s3 = c }
}

// WithAWSOptions tunes the S3 client loaded from the environment.
func WithAWSOptions(opts ...aws.Option) Option {
	return func(e *exporter) { e.awsOpts = append(e.awsOpts, opts...) }
}

// WithStdout replaces os.Stdout for the "-" destination.
func WithStdout(w io.Writer) Option {
	return func(e *exporter) { e.stdout = w }
}

// Export writes s to dest and returns where it went.
func Export(ctx context.Context, s Snapshot, dest string, opts ...Option) (Destination, error) {
	e := exporter{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&e)
	}

	d, err := ParseDestination(dest, s.ID)
	if err != nil {
		return Destination{}, err
	}

	body, err := s.Encode()
	if err != nil {
		return Destination{}, err
	}

	switch d.Scheme {
	case "stdout":
		_, err = e.stdout.Write(body)
	case "file":
		err = writeFile(d.Path, body)
	case "s3":
		err = e.putObject(ctx, d, body)
	}
	if err != nil {
		return Destination{}, fmt.Errorf("failed to export snapshot to %s: %w", d, err)
	}

	log.WithFields(log.Fields{"dest": d.String(), "id": s.ID, "bytes": len(body)}).Info("snapshot exported")
	return d, nil
}

func writeFile(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, body, 0o600)
}

func (e *exporter) putObject(ctx context.Context, d Destination, body []byte) error {
	client := e.s3
	if client == nil {
		c, err := aws.NewS3(ctx, e.awsOpts...)
		if err != nil {
			return err
		}
		client = c
	}

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awsv2.String(d.Bucket),
		Key:         awsv2.String(d.Key),
		Body:        bytes.NewReader(body),
		ContentType: awsv2.String("application/json"),
	})
	return err
}
