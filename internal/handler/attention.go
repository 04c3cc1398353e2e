package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/pkg/hash"
)

type AttentionHandler struct {
	manager *service.SessionManager
}

func NewAttentionHandler(manager *service.SessionManager) *AttentionHandler {
	return &AttentionHandler{manager: manager}
}

// eventKindFor maps API interaction types onto router event kinds.
// Saves score identically to likes (explicit policy); video_watch is an
// alias the mobile client sends for watch.
func eventKindFor(interactionType string) (model.EventKind, bool) {
	switch interactionType {
	case "save":
		return model.EventLike, true
	case "video_watch":
		return model.EventWatch, true
	default:
		kind := model.EventKind(interactionType)
		return kind, model.ValidEventKinds[kind]
	}
}

// Report handles POST /api/attention
func (h *AttentionHandler) Report(c fiber.Ctx) error {
	var req model.AttentionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	sessionID, errMsg := middleware.ValidateSessionID(req.SessionID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	targetID, errMsg := middleware.ValidateTargetID(req.TargetID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	kind, ok := eventKindFor(req.InteractionType)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INTERACTION",
			"interactionType must be one of: watch, like, comment, gift, boost, save")
	}

	if errMsg := middleware.ValidateRisk(req.Risk); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	s := h.manager.Get(sessionID)
	if s == nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Session not found")
	}

	// Events are verified unless the caller says otherwise.
	verified := req.Verified == nil || *req.Verified

	ev := model.AttentionEvent{
		Kind:     kind,
		Duration: float64(req.DurationMS) / 1000,
		Verified: verified,
		Risk:     req.Risk,
	}
	report := model.AttentionReport{
		TargetID:        targetID,
		InteractionType: req.InteractionType,
		DurationMS:      req.DurationMS,
		ContentHash:     hash.ContentHash(req.InteractionType, targetID),
		ContextHash:     hash.ContextHash(sessionID, targetID),
		Metadata:        req.Metadata,
	}

	reward, newScore := s.RegisterAttention(ev, report)

	Metrics.AttentionEventsTotal.WithLabelValues(string(kind)).Inc()
	Metrics.RewardsGrantedTotal.Add(float64(reward))

	return c.JSON(model.AttentionResponse{
		SessionID:  sessionID,
		UPS:        newScore,
		TrustState: model.TierForScore(newScore),
		Reward:     reward,
		Balance:    s.Balance(),
	})
}
