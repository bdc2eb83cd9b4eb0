package media

import (
	"slices"
	"strconv"
)

// Format is the output family a client asks for.
type Format int

const (
	FormatAudio Format = iota + 1
	FormatVideo
)

// ParseFormat maps the wire value ("mp3" / "mp4") to a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "mp3":
		return FormatAudio, true
	case "mp4":
		return FormatVideo, true
	default:
		return 0, false
	}
}

// Extension is the file extension (and container) produced for the format.
func (f Format) Extension() string {
	switch f {
	case FormatAudio:
		return "mp3"
	case FormatVideo:
		return "mp4"
	default:
		return ""
	}
}

// ContentType is the MIME type the artifact is served with.
func (f Format) ContentType() string {
	switch f {
	case FormatAudio:
		return "audio/mpeg"
	case FormatVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

func (f Format) String() string {
	switch f {
	case FormatAudio:
		return "audio"
	case FormatVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Quality is a maximum video height in pixels.
type Quality int

// Qualities lists the resolution tiers in ascending order.
var Qualities = []Quality{360, 480, 720, 1080}

// DefaultQuality is used when a video request carries no valid tier.
const DefaultQuality Quality = 720

// Valid reports whether q is one of Qualities.
func (q Quality) Valid() bool {
	return slices.Contains(Qualities, q)
}

// ResolveQuality returns the tier to use for a request. Audio ignores
// quality entirely (zero); video falls back to DefaultQuality for anything
// not in Qualities.
func ResolveQuality(f Format, raw string) Quality {
	if f != FormatVideo {
		return 0
	}
	for _, q := range Qualities {
		if raw == q.String() {
			return q
		}
	}
	return DefaultQuality
}

func (q Quality) String() string { return strconv.Itoa(int(q)) }
