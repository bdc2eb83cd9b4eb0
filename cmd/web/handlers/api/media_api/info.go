// package media_api provides the metadata and download API handlers.
package media_api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/aquatube/cmd/web/handlers/common"
	"thirdcoast.systems/aquatube/internal/media"
)

// MetadataFetcher looks up display metadata for a validated request.
type MetadataFetcher interface {
	Fetch(ctx context.Context, req media.ExtractionRequest) (*media.VideoMetadata, error)
}

type infoResponse struct {
	Title             string `json:"title"`
	Thumbnail         string `json:"thumbnail"`
	Duration          int    `json:"duration"`
	DurationFormatted string `json:"durationFormatted"`
	Uploader          string `json:"uploader"`
}

// HandleInfo returns title, thumbnail, duration and uploader for a video URL.
func HandleInfo(f MetadataFetcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			URL string `json:"url"`
		}
		if err := c.Bind(&body); err != nil {
			return common.ErrBadRequest("invalid request body")
		}

		req, err := media.NewMetadataRequest(body.URL)
		if err != nil {
			return toHTTPError(err)
		}

		meta, err := f.Fetch(c.Request().Context(), req)
		if err != nil {
			slog.Error("failed to fetch video info", "video_id", req.VideoID(), "error", err)
			return toHTTPError(err)
		}

		return c.JSON(200, infoResponse{
			Title:             meta.Title,
			Thumbnail:         meta.ThumbnailURL,
			Duration:          meta.DurationSeconds,
			DurationFormatted: meta.DurationFormatted(),
			Uploader:          meta.Uploader,
		})
	}
}

// toHTTPError maps validation failures to 400 and everything else to 500,
// keeping the error text as the message.
func toHTTPError(err error) *echo.HTTPError {
	var ve *media.ValidationError
	if errors.As(err, &ve) {
		return common.ErrBadRequest(ve.Message)
	}
	return common.ErrInternal(err.Error())
}
