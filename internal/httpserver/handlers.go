package httpserver

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

type handlers struct {
	deps Deps
}

type mediaRequest struct {
	Image       string `json:"image,omitempty"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type mediaResponse struct {
	Media  string `json:"media,omitempty"`
	Handle string `json:"handle,omitempty"`
	Error  string `json:"error,omitempty"`
}

// editImage applies a prompt to an uploaded image. Provider failures are
// job-level outcomes, reported as 502 with an error body.
func (h *handlers) editImage(c echo.Context) error {
	var req mediaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, mediaResponse{Error: "invalid request"})
	}
	clip, err := media.ParseDataURL(req.Image, "image/jpeg")
	if err != nil || clip.Empty() {
		return c.JSON(http.StatusBadRequest, mediaResponse{Error: "image payload required"})
	}
	out, err := h.deps.Media.EditImage(c.Request().Context(), clip, req.Prompt)
	if err != nil {
		log.Printf("media edit failed: %v", err)
		return c.JSON(http.StatusBadGateway, mediaResponse{Error: "could not edit image"})
	}
	return c.JSON(http.StatusOK, mediaResponse{Media: out.DataURL()})
}

func (h *handlers) generateImage(c echo.Context) error {
	var req mediaRequest
	if err := c.Bind(&req); err != nil || req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, mediaResponse{Error: "prompt required"})
	}
	out, err := h.deps.Media.GenerateImage(c.Request().Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		log.Printf("media generate failed: %v", err)
		return c.JSON(http.StatusBadGateway, mediaResponse{Error: "could not generate image"})
	}
	return c.JSON(http.StatusOK, mediaResponse{Media: out.DataURL()})
}

func (h *handlers) animateImage(c echo.Context) error {
	var req mediaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, mediaResponse{Error: "invalid request"})
	}
	clip, err := media.ParseDataURL(req.Image, "image/png")
	if err != nil || clip.Empty() {
		return c.JSON(http.StatusBadRequest, mediaResponse{Error: "image payload required"})
	}
	out, ref, err := h.deps.Media.AnimateImage(c.Request().Context(), clip, req.Prompt)
	if err != nil {
		log.Printf("media animate failed: %v", err)
		return c.JSON(http.StatusBadGateway, mediaResponse{Error: "could not animate image"})
	}
	return c.JSON(http.StatusOK, mediaResponse{Media: out.DataURL(), Handle: ref})
}
