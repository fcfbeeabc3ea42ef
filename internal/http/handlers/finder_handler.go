package handlers

import (
	"github.com/finder-market/backend/internal/http/dto"
	"github.com/finder-market/backend/internal/middleware"
	"github.com/finder-market/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FinderHandler struct {
	finderService *services.FinderService
	log           *zap.Logger
}

func NewFinderHandler(finderService *services.FinderService, log *zap.Logger) *FinderHandler {
	return &FinderHandler{finderService: finderService, log: log}
}

func (h *FinderHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.finderService.GetBalance(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: balance})
}

func (h *FinderHandler) GetLevel(c *fiber.Ctx) error {
	level, err := h.finderService.GetLevel(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: level})
}

func (h *FinderHandler) ListLevels(c *fiber.Ctx) error {
	levels, err := h.finderService.ListLevels(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: levels})
}
