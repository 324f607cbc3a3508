package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
)

func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code != fiber.StatusNotFound {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    "HTTP_ERROR",
						"message": fiberErr.Message,
					},
				})
			}
			err = domain.ErrNotFound.WithError(fiberErr)
		}

		// Check if it's our AppError
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
					slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				)
			} else if appErr.Err != nil {
				logger.Debug("request rejected",
					slog.String("code", appErr.Code),
					slog.Any("error", appErr.Err),
					slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				)
			}

			return c.Status(appErr.StatusCode).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    appErr.Code,
					"message": appErr.Message,
				},
			})
		}

		// Unknown error - log and return generic message
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		)

		return c.Status(domain.ErrInternal.StatusCode).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    domain.ErrInternal.Code,
				"message": domain.ErrInternal.Message,
			},
		})
	}
}
