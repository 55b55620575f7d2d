package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"streamrelay/pkg/services"
)

type StreamsHandler struct {
	svc services.StreamsService
}

func NewStreams(svc services.StreamsService) *StreamsHandler {
	return &StreamsHandler{svc: svc}
}

// LiveStreamDetails handles GET /api/live-stream-details/:videoId.
func (h *StreamsHandler) LiveStreamDetails(c *fiber.Ctx) error {
	videoID := c.Params("videoId")

	details, err := h.svc.LiveStreamDetails(c.Context(), videoID)
	switch {
	case errors.Is(err, services.ErrMissingVideoID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Video ID is required",
		})
	case errors.Is(err, services.ErrStreamNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Stream not found",
		})
	case err != nil:
		log.Printf("[STREAMS] lookup %s: %v", videoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(details)
}

// MusicRecommendations handles GET /api/music-recommendations.
func (h *StreamsHandler) MusicRecommendations(c *fiber.Ctx) error {
	query := c.Query("q")
	region := c.Query("region")
	max, _ := strconv.Atoi(c.Query("maxResults", "10"))

	recs, err := h.svc.MusicRecommendations(c.Context(), query, region, max)
	if err != nil {
		log.Printf("[STREAMS] recommendations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"items": recs})
}
