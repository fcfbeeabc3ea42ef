package handlers

import (
	"strconv"

	"github.com/finder-market/backend/internal/config"
	"github.com/finder-market/backend/internal/http/dto"
	"github.com/finder-market/backend/internal/middleware"
	"github.com/finder-market/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContractHandler struct {
	contractService *services.ContractService
	cfg             *config.Config
	log             *zap.Logger
}

func NewContractHandler(contractService *services.ContractService, cfg *config.Config, log *zap.Logger) *ContractHandler {
	return &ContractHandler{contractService: contractService, cfg: cfg, log: log}
}

func (h *ContractHandler) isAdmin(c *fiber.Ctx) bool {
	return middleware.GetRole(c) == "admin" || h.cfg.IsAdmin(middleware.GetUserID(c))
}

func (h *ContractHandler) CreateContract(c *fiber.Ctx) error {
	var req dto.CreateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request_id"})
	}
	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid proposal_id"})
	}
	finderID, err := uuid.Parse(req.FinderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid finder_id"})
	}

	clientID := middleware.GetUserID(c)
	contract, err := h.contractService.CreateContract(c.Context(), clientID, services.CreateContractInput{
		RequestID:  requestID,
		ProposalID: proposalID,
		FinderID:   finderID,
		Amount:     req.Amount,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: contract})
}

func (h *ContractHandler) FundEscrow(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid contract id"})
	}

	contract, err := h.contractService.FundEscrow(c.Context(), middleware.GetUserID(c), contractID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: contract})
}

func (h *ContractHandler) OpenDispute(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid contract id"})
	}

	contract, err := h.contractService.OpenDispute(c.Context(), middleware.GetUserID(c), contractID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: contract})
}

func (h *ContractHandler) GetContract(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid contract id"})
	}

	contract, err := h.contractService.GetContract(c.Context(), middleware.GetUserID(c), h.isAdmin(c), contractID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: contract})
}

func (h *ContractHandler) ListContracts(c *fiber.Ctx) error {
	limit, offset := 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	var status *string
	if v := c.Query("status"); v != "" {
		status = &v
	}

	contracts, err := h.contractService.ListContracts(c.Context(),
		middleware.GetUserID(c), middleware.GetRole(c), status, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: contracts})
}

func (h *ContractHandler) GetContractEvents(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid contract id"})
	}

	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	logs, err := h.contractService.GetContractEvents(c.Context(),
		middleware.GetUserID(c), h.isAdmin(c), contractID, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}
