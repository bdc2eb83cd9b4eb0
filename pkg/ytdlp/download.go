package ytdlp

import (
	"context"
	"fmt"
	"strings"
)

// AudioArgs asks yt-dlp to extract the best audio and convert it to codec
// (e.g. "mp3") at the highest VBR quality.
func AudioArgs(codec string) []string {
	return []string{
		"-x",
		"--audio-format", codec,
		"--audio-quality", "0",
	}
}

// VideoFormatSelector prefers the best video at or below maxHeight merged
// with the best audio, then a single combined stream at or below maxHeight,
// then whatever combined stream is best.
func VideoFormatSelector(maxHeight int) string {
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best", maxHeight, maxHeight)
}

// VideoArgs selects streams with VideoFormatSelector and forces the merged
// output into container regardless of the source container.
func VideoArgs(maxHeight int, container string) []string {
	return []string{
		"-f", VideoFormatSelector(maxHeight),
		"--merge-output-format", container,
	}
}

// Download runs yt-dlp in download mode, writing to outputTemplate
// (a yt-dlp -o template such as "/tmp/x/media.%(ext)s"). formatArgs come
// from AudioArgs or VideoArgs. Stdout is drained and discarded.
func (c *Client) Download(ctx context.Context, url string, outputTemplate string, formatArgs ...string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(outputTemplate) == "" {
		return fmt.Errorf("ytdlp: output template is required")
	}

	args := make([]string, 0, len(formatArgs)+6)
	args = append(args, formatArgs...)
	args = append(args,
		"-o", outputTemplate,
		"--no-warnings",
		"--no-playlist",
		url,
	)

	_, err := c.exec(ctx, false, args...)
	return err
}
