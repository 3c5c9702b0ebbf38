package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/TerrellBlash/solace-vite/internal/chat"
	"github.com/TerrellBlash/solace-vite/internal/mediagen"
	"github.com/TerrellBlash/solace-vite/internal/speech"
	"github.com/TerrellBlash/solace-vite/internal/transcribe"
)

// Deps bundles the collaborators the UI boundary exposes.
type Deps struct {
	Streamer    chat.Streamer
	Transcriber transcribe.Transcriber
	Synthesizer speech.Synthesizer
	Media       mediagen.Generator

	// MediaDir, when set, is served at /media for locally stored results.
	MediaDir string
	// Greeting seeds each conversation; empty keeps the default.
	Greeting string
}

// New creates a configured Echo server instance with all companion routes.
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := &handlers{deps: deps}
	e.POST("/api/media/edit", h.editImage)
	e.POST("/api/media/generate", h.generateImage)
	e.POST("/api/media/animate", h.animateImage)
	e.GET("/ws", h.session)

	if deps.MediaDir != "" {
		e.Static("/media", deps.MediaDir)
	}
	return e
}
