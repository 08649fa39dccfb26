package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, stock y auditoría (protegido).
type InventoryHandler struct {
	engine   *inventory.ReconciliationEngine
	query    *inventory.StockQueryUseCase
	lowStock *inventory.LowStockUseCase
	audit    *inventory.AuditUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	engine *inventory.ReconciliationEngine,
	query *inventory.StockQueryUseCase,
	lowStock *inventory.LowStockUseCase,
	audit *inventory.AuditUseCase,
) *InventoryHandler {
	return &InventoryHandler{engine: engine, query: query, lowStock: lowStock, audit: audit}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Aplica inbound (entrada), sale (venta) o adjustment (ajuste) y agrega el movimiento al ledger.
// @Description  Una venta con quantity positiva o |quantity| > 1000000000 es 400 (validation); una venta mayor al stock es 409 (insufficient_stock).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Accept-Language  header  string  false  "ko, zh, en, es"
// @Param        body  body  dto.StockAdjustmentRequest  true  "product_id, quantity (con signo), type, reason, note, skip_cashbook"
// @Success      201   {object}  dto.StockAdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	r := responderFor(c)
	userID := GetUserID(c)
	if userID == "" {
		return r.write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "UNAUTHORIZED", MsgUnauthorized)
	}
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return r.write(c, fiber.StatusBadRequest, domain.KindValidation, "INVALID_BODY", MsgInvalidBody)
	}
	res, err := h.engine.ApplyFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return r.fromError(c, err)
	}

	out := inventory.ToAdjustmentResponse(res)
	lang := c.Get(fiber.HeaderAcceptLanguage)
	if res.Clamped {
		out.Warnings = append(out.Warnings, dto.WarningDTO{
			Kind:    "adjustment_clamped",
			Message: r.i18n.Message(lang, MsgAdjustmentClamped, res.RequestedDelta, res.AppliedDelta),
		})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, dto.WarningDTO{Kind: w.Kind, Message: r.i18n.Message(lang, w.Kind)})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Ledger de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "máximo 100 (defecto 20)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return responderFor(c).write(c, fiber.StatusBadRequest, domain.KindValidation, "VALIDATION", MsgValidation)
	}
	out, err := h.query.ListMovements(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return responderFor(c).fromError(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.query.GetStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return responderFor(c).fromError(c, err)
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos en o bajo el umbral de stock
// @Description  Ordenados por mayor déficit, con cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 100 (defecto 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}  "total (todos los productos bajo umbral) e items (página)"
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return responderFor(c).write(c, fiber.StatusBadRequest, domain.KindValidation, "VALIDATION", MsgValidation)
	}
	list, err := h.lowStock.List(c.UserContext(), page)
	if err != nil {
		return responderFor(c).fromError(c, err)
	}
	total, err := h.lowStock.Count(c.UserContext())
	if err != nil {
		return responderFor(c).fromError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": total,
		"items": list,
	})
}

// RunAudit godoc
// @Summary      Auditoría del ledger
// @Description  Concilia on_hand de cada producto contra su ledger de movimientos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditReportDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/audit [get]
func (h *InventoryHandler) RunAudit(c *fiber.Ctx) error {
	report, err := h.audit.Run(c.UserContext())
	if err != nil {
		return responderFor(c).fromError(c, err)
	}
	return c.JSON(report)
}
