package handlers

import (
	"github.com/finder-market/backend/internal/http/dto"
	"github.com/finder-market/backend/internal/middleware"
	"github.com/finder-market/backend/internal/repositories"
	"github.com/finder-market/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	fundService *services.FundService
	log         *zap.Logger
}

func NewAdminHandler(fundService *services.FundService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{fundService: fundService, log: log}
}

func (h *AdminHandler) GetFundConfig(c *fiber.Ctx) error {
	cfg, err := h.fundService.GetConfig(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cfg})
}

func (h *AdminHandler) UpdateFundConfig(c *fiber.Ctx) error {
	var req dto.UpdateFundConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	cfg, err := h.fundService.UpdateConfig(c.Context(), middleware.GetUserID(c), repositories.UpdateFundConfigInput{
		HoldingPeriodHours:   req.HoldingPeriodHours,
		AutoCreditEnabled:    req.AutoCreditEnabled,
		MinimumRating:        req.MinimumRating,
		MinimumJobsCompleted: req.MinimumJobsCompleted,
		FeePercentage:        req.FeePercentage,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: cfg})
}

// ProcessNow runs a sweep cycle on demand instead of waiting for the
// worker's ticker.
func (h *AdminHandler) ProcessNow(c *fiber.Ctx) error {
	report, err := h.fundService.ProcessNow(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: report})
}
