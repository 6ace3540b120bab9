package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// FeedbackHandler manages post-closure feedback endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// Submit POST /feedback.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	feedback, err := h.service.Submit(c.UserContext(), user, service.FeedbackInput{
		ComplaintID: req.ComplaintID,
		Rating:      req.Rating,
		Message:     req.Message,
		Type:        domain.FeedbackType(req.Type),
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewFeedbackResponse(feedback)})
}

// List GET /feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	feedback, err := h.service.List(c.UserContext(), user, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackResponse, 0, len(feedback))
	for i := range feedback {
		items = append(items, dto.NewFeedbackResponse(&feedback[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
