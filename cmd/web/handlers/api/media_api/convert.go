package media_api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/aquatube/cmd/web/handlers/api/fileserver"
	"thirdcoast.systems/aquatube/cmd/web/handlers/common"
	"thirdcoast.systems/aquatube/internal/media"
)

// ArtifactProducer runs an extraction to completion and returns the result.
type ArtifactProducer interface {
	Produce(ctx context.Context, req media.ExtractionRequest, title string) (*media.Delivery, error)
}

// AttachmentServer streams a finished artifact and owns its release.
type AttachmentServer interface {
	ServeAttachment(c echo.Context, a fileserver.Attachment) error
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

// HandleConvert downloads the requested rendition and streams it back as an
// attachment. The working directory is removed once the transfer ends.
func HandleConvert(p ArtifactProducer, fs AttachmentServer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			URL     string      `json:"url"`
			Format  string      `json:"format"`
			Quality looseString `json:"quality"`
			Title   string      `json:"title"`
		}
		if err := c.Bind(&body); err != nil {
			return common.ErrBadRequest("invalid request body")
		}

		req, err := media.NewDownloadRequest(body.URL, strings.TrimSpace(body.Format), string(body.Quality))
		if err != nil {
			return toHTTPError(err)
		}

		del, err := p.Produce(c.Request().Context(), req, body.Title)
		if err != nil {
			slog.Error("conversion failed",
				"video_id", req.VideoID(),
				"format", req.Format().String(),
				"error", err,
			)
			return toHTTPError(err)
		}

		return fs.ServeAttachment(c, fileserver.Attachment{
			Path:        del.Artifact.Path,
			Filename:    del.Filename,
			ContentType: del.ContentType,
			Release:     del.Artifact.Release,
		})
	}
}
