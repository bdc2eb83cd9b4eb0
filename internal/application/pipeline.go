package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"thirdcoast.systems/aquatube/internal/config"
	"thirdcoast.systems/aquatube/internal/media"
	"thirdcoast.systems/aquatube/pkg/artifact"
	"thirdcoast.systems/aquatube/pkg/ytdlp"
)

var (
	probeBackoffBase  = 500 * time.Millisecond
	probeBackoffScale = 1.618
)

// Pipeline holds the components shared by every request.
type Pipeline struct {
	Client   *ytdlp.Client
	Store    *artifact.Store
	Fetcher  *media.Fetcher
	Producer *media.Producer
}

// NewPipeline wires the yt-dlp client and artifact store from conf.
func NewPipeline(conf config.Config) (*Pipeline, error) {
	client := ytdlp.New()
	client.Path = conf.YtdlpPath
	client.SearchPaths = conf.SearchPaths()
	client.ExtraArgs = conf.ExtraArgs()
	client.Timeout = conf.ProcessTimeout
	client.Runner = &ytdlp.ExecRunner{
		LogCallback: func(stream, line string) {
			slog.Debug("yt-dlp", "stream", stream, "line", line)
		},
	}

	store, err := artifact.NewStore(conf.TempDir, conf.ArtifactPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}
	slog.Info("Artifact store ready", "root", store.Root())

	return &Pipeline{
		Client:   client,
		Store:    store,
		Fetcher:  media.NewFetcher(client),
		Producer: media.NewProducer(client, store),
	}, nil
}

// ProbeExtractor runs `yt-dlp --version` until it succeeds or attempts run
// out, backing off between tries.
func ProbeExtractor(ctx context.Context, client *ytdlp.Client, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		version, err := client.Version(ctx)
		if err == nil {
			return version, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		backoff := time.Duration(float64(probeBackoffBase) * math.Pow(probeBackoffScale, float64(i)))
		slog.Warn("yt-dlp not ready, retrying", "attempt", i+1, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("yt-dlp unavailable after %d attempts: %w", attempts, lastErr)
}
