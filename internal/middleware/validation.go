package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field limits for API inputs.
const (
	MaxVideoIDLen  = 64
	MaxTargetIDLen = 64
	SessionIDLen   = 36 // UUID string form

	// Playback speed bounds accepted by the accrual endpoints.
	MinPlaybackSpeed = 0.25
	MaxPlaybackSpeed = 3.0

	// MaxSegmentSeconds bounds a single reported watch segment; longer
	// ranges are almost certainly client clock bugs.
	MaxSegmentSeconds = 6 * 60 * 60
)

var (
	// videoIDRe matches platform content ids: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// sessionIDRe matches canonical lowercase UUIDs.
	sessionIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a video ID is well-formed.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoId must be at most 64 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoId contains invalid characters"
	}
	return id, ""
}

// ValidateSessionID checks that a session ID is a canonical UUID.
func ValidateSessionID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "sessionId is required"
	}
	if len(id) != SessionIDLen || !sessionIDRe.MatchString(id) {
		return "", "sessionId must be a UUID"
	}
	return id, ""
}

// ValidateTargetID checks an optional interaction target id.
func ValidateTargetID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ""
	}
	if len(id) > MaxTargetIDLen {
		return "", "targetId must be at most 64 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "targetId contains invalid characters"
	}
	return id, ""
}

// ValidateSpeed checks a playback speed value.
func ValidateSpeed(speed float64) string {
	if speed < MinPlaybackSpeed || speed > MaxPlaybackSpeed {
		return "speed must be between 0.25 and 3.0"
	}
	return ""
}

// ValidateSegment checks a watched segment's bounds.
func ValidateSegment(start, end float64) string {
	if start < 0 {
		return "start must be non-negative"
	}
	if end <= start {
		return "end must be greater than start"
	}
	if end-start > MaxSegmentSeconds {
		return "segment is implausibly long"
	}
	return ""
}

// ValidateRisk checks a caller-supplied suspicion score.
func ValidateRisk(risk float64) string {
	if risk < 0 || risk > 1 {
		return "risk must be between 0 and 1"
	}
	return ""
}
