package media

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/aquatube/pkg/artifact"
	"thirdcoast.systems/aquatube/pkg/utils/filename"
	"thirdcoast.systems/aquatube/pkg/ytdlp"
)

// defaultName is used when the caller's title sanitizes to nothing.
const defaultName = "video"

// Downloader runs the extraction process in download mode.
type Downloader interface {
	Download(ctx context.Context, url string, outputTemplate string, formatArgs ...string) error
}

// Delivery is a produced artifact plus what the transport needs to send it.
// Whoever holds a Delivery owns the artifact and must release it.
type Delivery struct {
	Artifact    *artifact.Artifact
	Filename    string
	ContentType string
}

// Producer turns a download request into an artifact on disk.
type Producer struct {
	Downloader Downloader
	Store      *artifact.Store
}

func NewProducer(d Downloader, store *artifact.Store) *Producer {
	return &Producer{Downloader: d, Store: store}
}

// FormatArgs returns the extraction arguments for req's format and quality.
func FormatArgs(req ExtractionRequest) []string {
	if req.Format() == FormatAudio {
		return ytdlp.AudioArgs(FormatAudio.Extension())
	}
	q := req.Quality()
	if !q.Valid() {
		q = DefaultQuality
	}
	return ytdlp.VideoArgs(int(q), FormatVideo.Extension())
}

// Produce downloads req into a fresh allocation and resolves the artifact.
// title is the caller-supplied display name used for the download filename.
//
// On any error the allocation is released before returning, so nothing is
// left on disk. On success the returned Delivery owns the artifact.
func (p *Producer) Produce(ctx context.Context, req ExtractionRequest, title string) (*Delivery, error) {
	alloc, err := p.Store.Allocate()
	if err != nil {
		return nil, err
	}

	log := slog.With("artifact_id", alloc.ID, "video_id", req.VideoID(), "format", req.Format().String())
	if req.Format() == FormatVideo {
		log = log.With("quality", req.Quality().String())
	}

	log.Info("starting extraction")
	if err := p.Downloader.Download(ctx, req.URL(), alloc.Template, FormatArgs(req)...); err != nil {
		releaseAllocation(log, alloc)
		return nil, err
	}

	art, err := p.Store.Resolve(alloc, req.Format().Extension())
	if err != nil {
		releaseAllocation(log, alloc)
		return nil, err
	}

	log.Info("extraction finished", "size", humanize.Bytes(uint64(art.Size)))
	return &Delivery{
		Artifact:    art,
		Filename:    filename.WithExtension(title, req.Format().Extension(), defaultName),
		ContentType: req.Format().ContentType(),
	}, nil
}

func releaseAllocation(log *slog.Logger, alloc *artifact.Allocation) {
	if err := alloc.Release(); err != nil {
		log.Warn("failed to release allocation", "error", err)
	}
}
