package handlers

import (
	"github.com/finder-market/backend/internal/http/dto"
	"github.com/finder-market/backend/internal/middleware"
	"github.com/finder-market/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	reviewService *services.ReviewService
	log           *zap.Logger
}

func NewSubmissionHandler(reviewService *services.ReviewService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{reviewService: reviewService, log: log}
}

func (h *SubmissionHandler) SubmitWork(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid contract id"})
	}

	var req dto.SubmitWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	sub, err := h.reviewService.SubmitWork(c.Context(), middleware.GetUserID(c), services.SubmitWorkInput{
		ContractID:      contractID,
		SubmissionText:  req.SubmissionText,
		AttachmentPaths: req.AttachmentPaths,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: sub})
}

func (h *SubmissionHandler) AcceptSubmission(c *fiber.Ctx) error {
	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	var req dto.AcceptSubmissionRequest
	_ = c.BodyParser(&req)

	result, err := h.reviewService.AcceptSubmission(c.Context(), middleware.GetUserID(c), submissionID,
		services.AcceptSubmissionInput{
			Feedback:       req.Feedback,
			Rating:         req.Rating,
			RatingFeedback: req.RatingFeedback,
		})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: result})
}

func (h *SubmissionHandler) RejectSubmission(c *fiber.Ctx) error {
	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	var req dto.RejectSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "feedback is required"})
	}

	sub, err := h.reviewService.RejectSubmission(c.Context(), middleware.GetUserID(c), submissionID, req.Feedback)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: sub})
}
