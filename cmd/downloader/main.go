package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"thirdcoast.systems/aquatube/internal/application"
	"thirdcoast.systems/aquatube/internal/config"
	"thirdcoast.systems/aquatube/internal/media"
)

type options struct {
	URL      string
	Format   string
	Quality  string
	Title    string
	OutDir   string
	InfoOnly bool
	Force    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	var opts options
	flag.StringVar(&opts.URL, "url", "", "video URL")
	flag.StringVar(&opts.Format, "format", "mp4", "mp3 or mp4")
	flag.StringVar(&opts.Quality, "quality", "720", "maximum video height (360, 480, 720, 1080)")
	flag.StringVar(&opts.Title, "title", "", "output name; defaults to the video title")
	flag.StringVar(&opts.OutDir, "out", ".", "directory to write the file into")
	flag.BoolVar(&opts.InfoOnly, "info", false, "print metadata as JSON and exit")
	flag.BoolVar(&opts.Force, "force", false, "overwrite an existing file")
	flag.Parse()

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(application.NewLogger(os.Stderr, *conf))

	pipeline, err := application.NewPipeline(*conf)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, pipeline, opts, os.Stdout); err != nil {
		slog.Error("download failed", "url", opts.URL, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, p *application.Pipeline, opts options, stdout io.Writer) error {
	if opts.InfoOnly {
		req, err := media.NewMetadataRequest(opts.URL)
		if err != nil {
			return err
		}
		meta, err := p.Fetcher.Fetch(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"title":             meta.Title,
			"thumbnail":         meta.ThumbnailURL,
			"duration":          meta.DurationSeconds,
			"durationFormatted": meta.DurationFormatted(),
			"uploader":          meta.Uploader,
		})
	}

	req, err := media.NewDownloadRequest(opts.URL, opts.Format, opts.Quality)
	if err != nil {
		return err
	}

	title := opts.Title
	if title == "" {
		if meta, err := p.Fetcher.Fetch(ctx, req); err == nil {
			title = meta.Title
		} else {
			slog.Warn("could not fetch title, using default name", "error", err)
		}
	}

	del, err := p.Producer.Produce(ctx, req, title)
	if err != nil {
		return err
	}
	defer func() {
		if err := del.Artifact.Release(); err != nil {
			slog.Warn("failed to release artifact", "error", err)
		}
	}()

	dst := filepath.Join(opts.OutDir, del.Filename)
	n, err := copyFile(del.Artifact.Path, dst, opts.Force)
	if err != nil {
		return err
	}

	slog.Info("Saved", "path", dst, "size", humanize.Bytes(uint64(n)))
	_, err = fmt.Fprintln(stdout, dst)
	return err
}

func copyFile(src, dst string, overwrite bool) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("write output: %w", err)
	}
	return n, nil
}
