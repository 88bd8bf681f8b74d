package api

import (
	stderrors "errors"
	"time"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	if stderrors.Is(err, apperrors.ErrNotFound) {
		return fiber.StatusNotFound
	}
	switch apperrors.GetKind(err) {
	case apperrors.KindInput:
		return fiber.StatusBadRequest
	case apperrors.KindAuth:
		return fiber.StatusUnauthorized
	case apperrors.KindRejected:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindTransport, apperrors.KindShape:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": apperrors.UserMessage(err),
		"code":  apperrors.GetCode(err),
	})
}
