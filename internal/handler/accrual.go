package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
)

// AccrualHandler exposes the continuous earning engine over HTTP. The
// client drives the lifecycle (start on playback, pause on backgrounding,
// flush on leaving the view); earned units land in the video's progress
// record via the manager's emit callback.
type AccrualHandler struct {
	accrual  *service.AccrualManager
	sessions *service.SessionManager
	progress *service.ProgressService
}

func NewAccrualHandler(accrual *service.AccrualManager, sessions *service.SessionManager, progress *service.ProgressService) *AccrualHandler {
	return &AccrualHandler{accrual: accrual, sessions: sessions, progress: progress}
}

type accrualRequest struct {
	SessionID string  `json:"sessionId"`
	Speed     float64 `json:"speed,omitempty"`
}

// parse validates the shared request shape. When ok is false the error
// response has already been written and err is what the handler must
// return.
func (h *AccrualHandler) parse(c fiber.Ctx) (videoID, sessionID string, req accrualRequest, ok bool, err error) {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return "", "", req, false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if err := c.Bind().JSON(&req); err != nil {
		return "", "", req, false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	sessionID, errMsg = middleware.ValidateSessionID(req.SessionID)
	if errMsg != "" {
		return "", "", req, false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if h.sessions.Get(sessionID) == nil {
		return "", "", req, false, middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Session not found")
	}
	return videoID, sessionID, req, true, nil
}

// Start handles POST /api/accrual/:videoId/start
func (h *AccrualHandler) Start(c fiber.Ctx) error {
	videoID, sessionID, req, ok, err := h.parse(c)
	if !ok {
		return err
	}
	if req.Speed != 0 {
		if errMsg := middleware.ValidateSpeed(req.Speed); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}
	}

	// Make sure a progress record exists so emitted units have a ledger
	// row to land in. Re-saving the current position is harmless.
	h.progress.SaveProgress(c.Context(), videoID, h.progress.ResumePosition(videoID), 0)
	h.accrual.Start(sessionID, videoID, req.Speed)

	return c.JSON(fiber.Map{"success": true})
}

// SetSpeed handles PUT /api/accrual/:videoId/speed
func (h *AccrualHandler) SetSpeed(c fiber.Ctx) error {
	videoID, sessionID, req, ok, err := h.parse(c)
	if !ok {
		return err
	}
	if errMsg := middleware.ValidateSpeed(req.Speed); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.accrual.SetSpeed(sessionID, videoID, req.Speed)
	return c.JSON(fiber.Map{"success": true})
}

// Pause handles POST /api/accrual/:videoId/pause
func (h *AccrualHandler) Pause(c fiber.Ctx) error {
	videoID, sessionID, _, ok, err := h.parse(c)
	if !ok {
		return err
	}

	pending := h.accrual.Pause(sessionID, videoID)
	return c.JSON(fiber.Map{"success": true, "pending": pending})
}

// Flush handles POST /api/accrual/:videoId/flush
// Emits the sub-unit remainder into the progress ledger and reports how
// much was flushed.
func (h *AccrualHandler) Flush(c fiber.Ctx) error {
	videoID, sessionID, _, ok, err := h.parse(c)
	if !ok {
		return err
	}

	flushed := h.accrual.Flush(sessionID, videoID)
	return c.JSON(fiber.Map{"success": true, "flushed": flushed})
}

// Stop handles POST /api/accrual/:videoId/stop
// Discards any accrued fraction; used when switching content.
func (h *AccrualHandler) Stop(c fiber.Ctx) error {
	videoID, sessionID, _, ok, err := h.parse(c)
	if !ok {
		return err
	}

	h.accrual.Stop(sessionID, videoID)
	return c.JSON(fiber.Map{"success": true})
}
