package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/aquatube/internal/application"
	"thirdcoast.systems/aquatube/internal/media"
	"thirdcoast.systems/aquatube/pkg/artifact"
	"thirdcoast.systems/aquatube/pkg/ytdlp"
)

type fakeRunner struct {
	infoJSON string
	ext      string
}

func (f *fakeRunner) Run(ctx context.Context, inv ytdlp.Invocation) (*ytdlp.Outcome, error) {
	for i, a := range inv.Args {
		switch a {
		case "--dump-json":
			return &ytdlp.Outcome{Stdout: []byte(f.infoJSON)}, nil
		case "-o":
			path := strings.Replace(inv.Args[i+1], "%(ext)s", f.ext, 1)
			return &ytdlp.Outcome{}, os.WriteFile(path, []byte("bytes-"+f.ext), 0o600)
		}
	}
	return &ytdlp.Outcome{}, nil
}

func newPipeline(t *testing.T, r *fakeRunner) (*application.Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	store, err := artifact.NewStore(root, "aquatube")
	require.NoError(t, err)
	client := &ytdlp.Client{Runner: r}
	return &application.Pipeline{
		Client:   client,
		Store:    store,
		Fetcher:  media.NewFetcher(client),
		Producer: media.NewProducer(client, store),
	}, root
}

func TestRun_DownloadUsesVideoTitle(t *testing.T) {
	p, root := newPipeline(t, &fakeRunner{infoJSON: `{"title":"A/B: Test"}`, ext: "mp3"})
	out := t.TempDir()
	var stdout bytes.Buffer

	err := run(context.Background(), p, options{URL: "https://youtu.be/abc", Format: "mp3", OutDir: out}, &stdout)
	require.NoError(t, err)

	dst := filepath.Join(out, "A B Test.mp3")
	require.Equal(t, dst+"\n", stdout.String())
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "bytes-mp3", string(got))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRun_RefusesToOverwrite(t *testing.T) {
	p, root := newPipeline(t, &fakeRunner{ext: "mp4"})
	out := t.TempDir()
	dst := filepath.Join(out, "clip.mp4")
	require.NoError(t, os.WriteFile(dst, []byte("keep"), 0o600))

	opts := options{URL: "https://youtu.be/abc", Format: "mp4", Quality: "480", Title: "clip", OutDir: out}
	require.Error(t, run(context.Background(), p, opts, &bytes.Buffer{}))
	got, _ := os.ReadFile(dst)
	require.Equal(t, "keep", string(got))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)

	opts.Force = true
	require.NoError(t, run(context.Background(), p, opts, &bytes.Buffer{}))
	got, _ = os.ReadFile(dst)
	require.Equal(t, "bytes-mp4", string(got))
}

func TestRun_InfoOnly(t *testing.T) {
	p, _ := newPipeline(t, &fakeRunner{infoJSON: `{"title":"T","uploader":"U","duration":90}`})
	var stdout bytes.Buffer

	require.NoError(t, run(context.Background(), p, options{URL: "https://youtu.be/abc", InfoOnly: true}, &stdout))

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Equal(t, "T", got["title"])
	require.Equal(t, "1:30", got["durationFormatted"])
}

func TestRun_RejectsBadURL(t *testing.T) {
	p, _ := newPipeline(t, &fakeRunner{})
	err := run(context.Background(), p, options{URL: "https://example.com", Format: "mp4"}, &bytes.Buffer{})
	var ve *media.ValidationError
	require.ErrorAs(t, err, &ve)
}
