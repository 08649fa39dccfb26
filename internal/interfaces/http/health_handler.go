package http

import "github.com/gofiber/fiber/v2"

// HealthHandler responde el chequeo de vida del servicio.
type HealthHandler struct {
	service string
}

// NewHealthHandler construye el handler.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service}
}

// Check godoc
// @Summary  Estado del servicio
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": h.service})
}
