package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stut/displayproxy/internal/metrics"
	"github.com/stut/displayproxy/internal/version"
)

// Info is the body of GET /info.
type Info struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r *Router) handleInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, Info{Width: r.display.Width(), Height: r.display.Height()})
}

func (r *Router) handleButtons(c echo.Context) error {
	return c.JSON(http.StatusOK, r.display.ButtonStatus())
}

// handleUpdate validates the declared length before touching the body, then
// reads exactly that many bytes and decodes them.
func (r *Router) handleUpdate(c echo.Context) error {
	req := c.Request()

	length := req.ContentLength
	if length <= 0 {
		metrics.FramesReceived.WithLabelValues("rejected").Inc()
		return c.String(http.StatusBadRequest, "No content length")
	}
	if length > r.display.MaxUploadSize() {
		metrics.FramesReceived.WithLabelValues("rejected").Inc()
		return c.String(http.StatusRequestEntityTooLarge, "Content too large")
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(req.Body, data); err != nil {
		metrics.FramesReceived.WithLabelValues("rejected").Inc()
		return c.String(http.StatusBadRequest, "Incomplete body")
	}

	img, format, err := r.decoder.Decode(data)
	if err != nil {
		metrics.FramesReceived.WithLabelValues("invalid").Inc()
		r.log.Debug("Rejected frame", "error", err)
		return c.String(http.StatusBadRequest, "Invalid image")
	}

	if err := r.display.Update(img); err != nil {
		metrics.FramesReceived.WithLabelValues("failed").Inc()
		r.log.Error("Display update failed", "error", err)
		return c.String(http.StatusInternalServerError, "Update failed")
	}

	metrics.FramesReceived.WithLabelValues("accepted").Inc()
	r.log.Debug("Frame accepted", "format", format, "bytes", length,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return c.NoContent(http.StatusNoContent)
}

func (r *Router) handleShutdown(c echo.Context) error {
	r.log.Info("Shutdown requested", "remote", c.RealIP())
	r.display.Shutdown()
	return c.NoContent(http.StatusAccepted)
}

func (r *Router) handleFrame(c echo.Context) error {
	frame := r.display.Frame()
	if frame == nil {
		return c.String(http.StatusNotFound, "No frame")
	}
	data, err := r.encoder.Encode(frame)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, r.encoder.ContentType(), data)
}

func (r *Router) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
