// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeReader struct {
	body []byte
	err  error
	path string
}

func (f *fakeReader) Config(_ context.Context, path string) ([]byte, error) {
	f.path = path
	return f.body, f.err
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

var taken = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func take(t *testing.T) Snapshot {
	t.Helper()
	r := &fakeReader{body: []byte(`{"success": true, "data": {"ssh": {"port": "22"}}}`)}
	s, err := Take(context.Background(), r, "/service/", "http://router:3001", taken)
	require.NoError(t, err)
	assert.Equal(t, "/service/", r.path)
	return s
}

func TestTake(t *testing.T) {
	s := take(t)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "service", s.Path)
	assert.Equal(t, "http://router:3001", s.Source)
	assert.JSONEq(t, `{"ssh": {"port": "22"}}`, string(s.Config))

	b, err := s.Encode()
	require.NoError(t, err)
	doc := gjson.ParseBytes(b)
	assert.Equal(t, "2025-06-01T12:00:00Z", doc.Get("taken_at").String())
	assert.Equal(t, "22", doc.Get("config.ssh.port").String())
}

func TestTake_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := Take(context.Background(), &fakeReader{err: boom}, "", "x", taken)
	assert.ErrorIs(t, err, boom)

	_, err = Take(context.Background(), &fakeReader{body: []byte(`{"success": true}`)}, "", "x", taken)
	assert.Error(t, err)
}

func TestParseDestination(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		dest    string
		want    Destination
		wantErr bool
	}{
		{dest: "-", want: Destination{Scheme: "stdout"}},
		{dest: "backup/router.json", want: Destination{Scheme: "file", Path: "backup/router.json"}},
		{dest: "file:///tmp/router.json", want: Destination{Scheme: "file", Path: "/tmp/router.json"}},
		{dest: "s3://configs/lab/router.json", want: Destination{Scheme: "s3", Bucket: "configs", Key: "lab/router.json"}},
		{dest: "s3://configs/lab/", want: Destination{Scheme: "s3", Bucket: "configs", Key: "lab/vyctl-" + id.String() + ".json"}},
		{dest: "s3://configs", want: Destination{Scheme: "s3", Bucket: "configs", Key: "vyctl-" + id.String() + ".json"}},
		{dest: "s3:///key", wantErr: true},
		{dest: "gs://bucket/key", wantErr: true},
		{dest: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, err := ParseDestination(tt.dest, id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDestination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDestination_String(t *testing.T) {
	assert.Equal(t, "s3://b/k", Destination{Scheme: "s3", Bucket: "b", Key: "k"}.String())
	assert.Equal(t, "-", Destination{Scheme: "stdout"}.String())
	assert.Equal(t, "a.json", Destination{Scheme: "file", Path: "a.json"}.String())
}

func TestExport_File(t *testing.T) {
	s := take(t)
	path := filepath.Join(t.TempDir(), "nested", "router.json")

	d, err := Export(context.Background(), s, path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.ID.String(), gjson.GetBytes(b, "id").String())
}

func TestExport_Stdout(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(context.Background(), take(t), "-", WithStdout(&buf))
	require.NoError(t, err)
	assert.Equal(t, "22", gjson.Get(buf.String(), "config.ssh.port").String())
}

func TestExport_S3(t *testing.T) {
	s := take(t)
	fake := &fakeS3{}

	d, err := Export(context.Background(), s, "s3://configs/lab/", WithS3Client(fake))
	require.NoError(t, err)
	assert.Equal(t, "configs", *fake.in.Bucket)
	assert.Equal(t, "lab/vyctl-"+s.ID.String()+".json", *fake.in.Key)
	assert.Equal(t, "application/json", *fake.in.ContentType)
	assert.Equal(t, d.Key, *fake.in.Key)
	assert.Equal(t, "service", gjson.GetBytes(fake.body, "path").String())
}

func TestExport_S3Failure(t *testing.T) {
	fake := &fakeS3{err: errors.New("AccessDenied")}
	_, err := Export(context.Background(), take(t), "s3://configs/k.json", WithS3Client(fake))
	assert.ErrorContains(t, err, "s3://configs/k.json")
	assert.ErrorContains(t, err, "AccessDenied")
}
