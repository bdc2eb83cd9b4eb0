package media

import (
	"strings"

	"thirdcoast.systems/aquatube/internal/videoid"
)

// Mode says whether a request only inspects a URL or downloads from it.
type Mode int

const (
	ModeMetadata Mode = iota + 1
	ModeDownload
)

// ExtractionRequest is a validated, immutable request for the extraction
// process. Build one with NewMetadataRequest or NewDownloadRequest.
type ExtractionRequest struct {
	url     string
	mode    Mode
	format  Format
	quality Quality
}

// NewMetadataRequest validates url for an inspect-only run.
func NewMetadataRequest(url string) (ExtractionRequest, error) {
	in := metadataInput{URL: strings.TrimSpace(url)}
	if err := validate.Struct(in); err != nil {
		return ExtractionRequest{}, toValidationError(err)
	}
	return ExtractionRequest{url: in.URL, mode: ModeMetadata}, nil
}

// NewDownloadRequest validates url and format. quality is resolved with
// ResolveQuality, so audio always ends up with zero and video with a tier.
func NewDownloadRequest(url string, format string, quality string) (ExtractionRequest, error) {
	in := downloadInput{URL: strings.TrimSpace(url), Format: format}
	if err := validate.Struct(in); err != nil {
		return ExtractionRequest{}, toValidationError(err)
	}
	f, _ := ParseFormat(in.Format)
	return ExtractionRequest{
		url:     in.URL,
		mode:    ModeDownload,
		format:  f,
		quality: ResolveQuality(f, quality),
	}, nil
}

func (r ExtractionRequest) URL() string      { return r.url }
func (r ExtractionRequest) Mode() Mode       { return r.mode }
func (r ExtractionRequest) Format() Format   { return r.format }
func (r ExtractionRequest) Quality() Quality { return r.quality }

// VideoID is the id parsed from the URL, or "" when it cannot be parsed.
// Only used for log context.
func (r ExtractionRequest) VideoID() string {
	id, _ := videoid.ExtractYouTubeVideoID(r.url)
	return id
}
