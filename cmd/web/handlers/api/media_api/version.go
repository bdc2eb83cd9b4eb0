package media_api

import (
	"context"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/aquatube/cmd/web/handlers/common"
)

// VersionSource reports the extraction tool version.
type VersionSource interface {
	Version(ctx context.Context) (string, error)
}

// HandleVersion returns the installed yt-dlp version.
func HandleVersion(v VersionSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		version, err := v.Version(c.Request().Context())
		if err != nil {
			return common.ErrInternal(err.Error())
		}
		return c.JSON(200, map[string]string{"version": version})
	}
}
