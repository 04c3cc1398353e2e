package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
)

type ProgressHandler struct {
	svc *service.ProgressService
}

func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

type segmentRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type positionRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration,omitempty"`
}

type rewardRequest struct {
	Amount float64 `json:"amount"`
}

// MarkSegment handles POST /api/progress/:videoId/segments
// The response carries how much of the segment was new (not previously
// credited) so the caller can grant reward without double-paying replays.
func (h *ProgressHandler) MarkSegment(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req segmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if errMsg := middleware.ValidateSegment(req.Start, req.End); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_SEGMENT", errMsg)
	}

	newTime := h.svc.NewWatchTime(videoID, req.Start, req.End)
	total := h.svc.MarkSegmentWatched(c.Context(), videoID, req.Start, req.End)

	Metrics.WatchSecondsCredited.Add(newTime)

	return c.JSON(model.SegmentResponse{
		VideoID:      videoID,
		NewWatchTime: newTime,
		TotalWatched: total,
	})
}

// SavePosition handles PUT /api/progress/:videoId/position
func (h *ProgressHandler) SavePosition(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req positionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.Position < 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "position must be non-negative")
	}

	h.svc.SaveProgress(c.Context(), videoID, req.Position, req.Duration)
	return c.JSON(fiber.Map{"success": true})
}

// Get handles GET /api/progress/:videoId
// Unknown videos return a zero-valued record: resume-from-zero is the
// normal first-watch case, not an error.
func (h *ProgressHandler) Get(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if resp := h.svc.Progress(videoID); resp != nil {
		return c.JSON(resp)
	}
	return c.JSON(model.ProgressResponse{VideoID: videoID})
}

// CreditReward handles POST /api/progress/:videoId/reward
func (h *ProgressHandler) CreditReward(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req rewardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.Amount < 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "amount must be non-negative")
	}

	h.svc.AddRewardCredited(c.Context(), videoID, req.Amount)
	return c.JSON(fiber.Map{"success": true})
}

// Clear handles DELETE /api/progress/:videoId
func (h *ProgressHandler) Clear(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.svc.ClearProgress(c.Context(), videoID)
	return c.JSON(fiber.Map{"success": true})
}
