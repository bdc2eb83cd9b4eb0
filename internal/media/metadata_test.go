package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/aquatube/pkg/ytdlp"
)

type fakeInfoSource struct {
	info *ytdlp.Info
	err  error
	urls []string
}

func (f *fakeInfoSource) GetInfo(ctx context.Context, url string) (*ytdlp.Info, error) {
	f.urls = append(f.urls, url)
	return f.info, f.err
}

func mustMetadataRequest(t *testing.T, url string) ExtractionRequest {
	t.Helper()
	req, err := NewMetadataRequest(url)
	require.NoError(t, err)
	return req
}

func TestFetch_MapsInfo(t *testing.T) {
	src := &fakeInfoSource{info: &ytdlp.Info{
		Title:     "Never Gonna Give You Up",
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Uploader:  "Rick Astley",
		Duration:  212.9,
	}}
	f := NewFetcher(src)

	meta, err := f.Fetch(context.Background(), mustMetadataRequest(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	require.NoError(t, err)
	require.Equal(t, "Never Gonna Give You Up", meta.Title)
	require.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", meta.ThumbnailURL)
	require.Equal(t, "Rick Astley", meta.Uploader)
	require.Equal(t, 212, meta.DurationSeconds)
	require.Equal(t, "3:32", meta.DurationFormatted())
	require.Equal(t, []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, src.urls)
}

func TestFetch_DefaultsMissingFields(t *testing.T) {
	f := NewFetcher(&fakeInfoSource{info: &ytdlp.Info{}})

	meta, err := f.Fetch(context.Background(), mustMetadataRequest(t, "https://youtu.be/abc"))
	require.NoError(t, err)
	require.Equal(t, "Unknown Title", meta.Title)
	require.Equal(t, "Unknown", meta.Uploader)
	require.Equal(t, "", meta.ThumbnailURL)
	require.Equal(t, 0, meta.DurationSeconds)
	require.Equal(t, "0:00", meta.DurationFormatted())
}

func TestFetch_UploaderFallsBackToChannel(t *testing.T) {
	f := NewFetcher(&fakeInfoSource{info: &ytdlp.Info{Channel: "Some Channel", Duration: -3}})

	meta, err := f.Fetch(context.Background(), mustMetadataRequest(t, "https://youtu.be/abc"))
	require.NoError(t, err)
	require.Equal(t, "Some Channel", meta.Uploader)
	require.Equal(t, 0, meta.DurationSeconds)
}

func TestFetch_PropagatesErrorsUnchanged(t *testing.T) {
	for _, want := range []error{
		&ytdlp.SpawnError{Cmd: "yt-dlp", Err: errors.New("not found")},
		&ytdlp.ExternalToolError{Cmd: "yt-dlp", ExitCode: 1, Stderr: "ERROR: private video"},
		&ytdlp.MetadataParseError{Err: errors.New("bad json")},
	} {
		f := NewFetcher(&fakeInfoSource{err: want})
		_, err := f.Fetch(context.Background(), mustMetadataRequest(t, "https://youtu.be/abc"))
		require.Same(t, want, err)
	}
}

func TestDurationFormatted(t *testing.T) {
	require.Equal(t, "0:45", VideoMetadata{DurationSeconds: 45}.DurationFormatted())
	require.Equal(t, "2:05", VideoMetadata{DurationSeconds: 125}.DurationFormatted())
	require.Equal(t, "1:02:05", VideoMetadata{DurationSeconds: 3725}.DurationFormatted())
}
