package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var statusByCode = map[string]int{
	"NOT_FOUND":          fiber.StatusNotFound,
	"VALIDATION":         fiber.StatusBadRequest,
	"INVALID_STATE":      fiber.StatusConflict,
	"INSUFFICIENT_STOCK": fiber.StatusConflict,
	"UNAUTHORIZED":       fiber.StatusUnauthorized,
	"FORBIDDEN":          fiber.StatusForbidden,
	"CONFLICT":           fiber.StatusConflict,
}

// writeError traduce errores de dominio a status y código. Los errores de
// infraestructura se registran y se responden sin detalle.
func writeError(c *fiber.Ctx, err error) error {
	code := inventory.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
