package media

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"thirdcoast.systems/aquatube/pkg/utils/format"
	"thirdcoast.systems/aquatube/pkg/ytdlp"
)

// VideoMetadata is the stable view of a video's info returned to clients.
type VideoMetadata struct {
	Title           string
	ThumbnailURL    string
	DurationSeconds int
	Uploader        string
}

// DurationFormatted renders DurationSeconds as M:SS or H:MM:SS.
func (m VideoMetadata) DurationFormatted() string {
	return format.Duration(float64(m.DurationSeconds))
}

// InfoSource runs the extraction process in inspect-only mode.
type InfoSource interface {
	GetInfo(ctx context.Context, url string) (*ytdlp.Info, error)
}

// Fetcher retrieves VideoMetadata for a URL.
type Fetcher struct {
	Source InfoSource
}

func NewFetcher(src InfoSource) *Fetcher {
	return &Fetcher{Source: src}
}

// Fetch returns metadata for req. Errors from the source (SpawnError,
// ExternalToolError, MetadataParseError) are returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, req ExtractionRequest) (*VideoMetadata, error) {
	info, err := f.Source.GetInfo(ctx, req.URL())
	if err != nil {
		return nil, err
	}

	meta := metadataFromInfo(info)
	slog.Info("fetched video info",
		"video_id", req.VideoID(),
		"title", meta.Title,
		"duration", meta.DurationSeconds,
	)
	return meta, nil
}

func metadataFromInfo(info *ytdlp.Info) *VideoMetadata {
	meta := &VideoMetadata{
		Title:        strings.TrimSpace(info.Title),
		ThumbnailURL: info.Thumbnail,
		Uploader:     strings.TrimSpace(info.Uploader),
	}
	if meta.Title == "" {
		meta.Title = "Unknown Title"
	}
	if meta.Uploader == "" {
		meta.Uploader = strings.TrimSpace(info.Channel)
	}
	if meta.Uploader == "" {
		meta.Uploader = "Unknown"
	}
	if d := info.Duration; d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d) {
		meta.DurationSeconds = int(math.Floor(d))
	}
	return meta
}
