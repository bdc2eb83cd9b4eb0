package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Info is a light wrapper over yt-dlp JSON output. It intentionally models only common fields.
// The full JSON is preserved in Raw.
type Info struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	WebpageURL string          `json:"webpage_url"`
	Thumbnail  string          `json:"thumbnail"`
	Uploader   string          `json:"uploader"`
	Channel    string          `json:"channel"`
	Duration   float64         `json:"duration"`
	Raw        json.RawMessage `json:"-"`
}

// GetInfo runs yt-dlp in inspect-only mode and parses its JSON output.
// It uses: --dump-json --no-download --no-warnings --no-playlist
func (c *Client) GetInfo(ctx context.Context, url string) (*Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	out, err := c.exec(ctx, true, "--dump-json", "--no-download", "--no-warnings", "--no-playlist", url)
	if err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(out.Stdout)
	if len(raw) == 0 {
		return nil, &MetadataParseError{Err: errors.New("empty output")}
	}

	info := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, &MetadataParseError{Err: err}
	}

	return info, nil
}
