package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/repository"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
)

type SessionHandler struct {
	manager  *service.SessionManager
	accrual  *service.AccrualManager
	accounts *repository.AccountRepo
}

func NewSessionHandler(manager *service.SessionManager, accrual *service.AccrualManager, accounts *repository.AccountRepo) *SessionHandler {
	return &SessionHandler{manager: manager, accrual: accrual, accounts: accounts}
}

// Start handles POST /api/sessions
func (h *SessionHandler) Start(c fiber.Ctx) error {
	s := h.manager.Start(c.Context())

	return c.Status(fiber.StatusCreated).JSON(model.SessionResponse{
		SessionID:  s.ID(),
		UPS:        s.UPS(),
		TrustState: s.TrustState(),
	})
}

// End handles DELETE /api/sessions/:sessionId?abnormal=true
// Ending an unknown session still succeeds; session end is best-effort.
func (h *SessionHandler) End(c fiber.Ctx) error {
	sessionID, errMsg := middleware.ValidateSessionID(c.Params("sessionId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	abnormal := fiber.Query[bool](c, "abnormal")
	h.accrual.EndSession(sessionID)
	h.manager.End(c.Context(), sessionID, abnormal)

	return c.JSON(fiber.Map{"success": true})
}

// Standing handles GET /api/sessions/:sessionId/standing?accountId=…
// The local score and balance are always returned; the authoritative
// account figures are included when a database and accountId are
// available. The two are not expected to match exactly.
func (h *SessionHandler) Standing(c fiber.Ctx) error {
	sessionID, errMsg := middleware.ValidateSessionID(c.Params("sessionId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	s := h.manager.Get(sessionID)
	if s == nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Session not found")
	}

	resp := model.StandingResponse{
		SessionID:  s.ID(),
		UPS:        s.UPS(),
		TrustState: s.TrustState(),
		Balance:    s.Balance(),
	}

	if accountID := fiber.Query[string](c, "accountId"); accountID != "" {
		standing, err := h.accounts.GetStanding(c.Context(), accountID)
		if err != nil {
			// Boundary failure: the local figures stay authoritative
			// for the response.
			middleware.Logger.Warn().Err(err).Msg("account standing read failed")
		} else {
			resp.Account = standing
		}
	}

	return c.JSON(resp)
}
