package web

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"thirdcoast.systems/aquatube/cmd/web/handlers/api/fileserver"
	"thirdcoast.systems/aquatube/cmd/web/handlers/api/media_api"
	"thirdcoast.systems/aquatube/cmd/web/handlers/common"
	"thirdcoast.systems/aquatube/internal/application"
	"thirdcoast.systems/aquatube/internal/config"
)

type Webserver struct {
	*echo.Echo
	conf       config.Config
	fetcher    media_api.MetadataFetcher
	producer   media_api.ArtifactProducer
	version    media_api.VersionSource
	fileServer *fileserver.FileServer
}

func NewWebserver(conf config.Config, p *application.Pipeline) (*Webserver, error) {
	webserver := &Webserver{
		Echo:       echo.New(),
		conf:       conf,
		fetcher:    p.Fetcher,
		producer:   p.Producer,
		version:    p.Client,
		fileServer: fileserver.NewFileServer(conf.StreamChunkBytes),
	}

	if err := webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err := webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

// isDownload reports whether the request streams a binary attachment.
func isDownload(c echo.Context) bool {
	return c.Path() == "/api/convert"
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.HTTPErrorHandler = common.HTTPErrorHandler
	s.Use(middleware.BodyLimit(s.conf.BodyLimit))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: isDownload,
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		LogURI:          true,
		LogMethod:       true,
		LogStatus:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogRequestID:    true,
		LogResponseSize: true,
		LogError:        true,
		HandleError:     false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
				"bytes_out", v.ResponseSize,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

func (s *Webserver) registerRoutes() error {
	apiGroup := s.Group("/api")
	apiGroup.POST("/info", media_api.HandleInfo(s.fetcher))
	apiGroup.POST("/convert", media_api.HandleConvert(s.producer, s.fileServer))
	apiGroup.GET("/version", media_api.HandleVersion(s.version))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	return nil
}
