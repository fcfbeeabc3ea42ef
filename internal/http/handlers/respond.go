package handlers

import (
	"errors"
	"net/http"

	"github.com/finder-market/backend/internal/apperror"
	"github.com/finder-market/backend/internal/http/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service errors onto the JSON error envelope. Internal
// errors are logged and masked; typed errors surface their code and message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != http.StatusInternalServerError {
		return c.Status(appErr.HTTPStatus).JSON(dto.ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Code),
		})
	}

	log.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: "internal error",
		Code:  string(apperror.ErrCodeInternal),
	})
}
