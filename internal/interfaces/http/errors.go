package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus status HTTP y código estable por categoría de error.
var errorStatus = map[string]struct {
	status int
	code   string
}{
	domain.KindValidation:           {fiber.StatusBadRequest, "VALIDATION"},
	domain.KindNotFound:             {fiber.StatusNotFound, "NOT_FOUND"},
	domain.KindInsufficientStock:    {fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	domain.KindConcurrencyExhausted: {fiber.StatusServiceUnavailable, "CONCURRENCY_EXHAUSTED"},
	domain.KindPersistence:          {fiber.StatusInternalServerError, "PERSISTENCE"},
	domain.KindUnauthorized:         {fiber.StatusUnauthorized, "UNAUTHORIZED"},
	domain.KindForbidden:            {fiber.StatusForbidden, "FORBIDDEN"},
	domain.KindInternal:             {fiber.StatusInternalServerError, "INTERNAL"},
}

// errorResponder traduce errores de dominio a respuestas JSON localizadas.
type errorResponder struct {
	i18n *Localizer
}

var defaultLocalizer = NewLocalizer("ko")

// responderFor usa el Localizer cargado por Localize o, si no hay, el coreano por defecto.
func responderFor(c *fiber.Ctx) errorResponder {
	if l, ok := c.Locals(LocalLocalizer).(*Localizer); ok && l != nil {
		return errorResponder{i18n: l}
	}
	return errorResponder{i18n: defaultLocalizer}
}

// Localize deja el Localizer en c.Locals para middlewares y handlers.
func Localize(l *Localizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalLocalizer, l)
		return c.Next()
	}
}

// fromError responde según la categoría del error.
func (r errorResponder) fromError(c *fiber.Ctx, err error) error {
	kind := domain.Kind(err)
	st, ok := errorStatus[kind]
	if !ok {
		kind = domain.KindInternal
		st = errorStatus[kind]
	}
	lang := c.Get(fiber.HeaderAcceptLanguage)

	var msg string
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		msg = r.i18n.Message(lang, MsgInsufficientStock, stockErr.OnHand, stockErr.Requested)
	default:
		msg = r.i18n.Message(lang, kind)
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		msg += ": " + vErr.Field
	}
	return c.Status(st.status).JSON(dto.ErrorResponse{
		Kind:      kind,
		Code:      st.code,
		Message:   msg,
		Retryable: domain.IsRetryable(err),
	})
}

// write responde con un código propio de la capa HTTP (token, body, rol).
func (r errorResponder) write(c *fiber.Ctx, status int, kind, code, msgKey string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Kind:    kind,
		Code:    code,
		Message: r.i18n.Message(c.Get(fiber.HeaderAcceptLanguage), msgKey),
	})
}
