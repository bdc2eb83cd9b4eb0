// Package videoid recognises the video-hosting URL shapes the service accepts
// and extracts the video id for logging.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// supportedURLRe matches watch, shorts and short-link URLs, with or without
// scheme and "www.".
var supportedURLRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|shorts/)|youtu\.be/).+`)

// IsSupportedURL reports whether raw (after trimming) is a URL the service
// will hand to the extraction process. Nothing else ever reaches a process.
func IsSupportedURL(raw string) bool {
	return supportedURLRe.MatchString(strings.TrimSpace(raw))
}

// ExtractYouTubeVideoID extracts the YouTube video ID from a URL.
// Returns empty string and error if not a valid YouTube URL or ID cannot be extracted.
func ExtractYouTubeVideoID(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", errors.New("empty url")
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	switch normalizeHost(u.Host) {
	case "youtu.be":
		if id := firstPathSegment(u.Path); id != "" {
			return id, nil
		}
	case "youtube.com", "www.youtube.com":
		if q := u.Query().Get("v"); q != "" {
			return q, nil
		}
		if strings.HasPrefix(u.Path, "/shorts/") {
			if id := firstPathSegment(strings.TrimPrefix(u.Path, "/shorts/")); id != "" {
				return id, nil
			}
		}
	}

	return "", errors.New("not a youtube url or video id not found")
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	// url.URL.Host may include port.
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil {
			if parsed.Hostname() != "" {
				h = parsed.Hostname()
			}
		}
	}
	return strings.TrimSuffix(h, ".")
}

func firstPathSegment(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	seg, _, _ := strings.Cut(p, "/")
	return strings.TrimSpace(seg)
}
