package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// Locals keys cargadas por los middlewares.
const (
	LocalUserID    = "user_id"
	LocalRole      = "role"
	LocalLocalizer = "localizer"
)

// Roles reconocidos.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y Role a c.Locals.
// El UserID es el actor que queda en created_by de cada movimiento.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := responderFor(c)
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return r.write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "MISSING_TOKEN", MsgMissingToken)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return r.write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "INVALID_TOKEN", MsgInvalidToken)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return r.write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "MISSING_TOKEN", MsgMissingToken)
		}
		userID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil || userID == "" {
			return r.write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "INVALID_TOKEN", MsgInvalidToken)
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole permite el paso solo si el rol del token está en allowed.
// Token sin rol: 401 MISSING_ROLE. Rol no permitido: 403 FORBIDDEN.
func RequireRole(allowed ...string) fiber.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[strings.ToLower(r)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := strings.ToLower(GetRole(c))
		if role == "" {
			return responderFor(c).write(c, fiber.StatusUnauthorized, domain.KindUnauthorized, "MISSING_ROLE", MsgMissingRole)
		}
		if _, ok := set[role]; !ok {
			return responderFor(c).write(c, fiber.StatusForbidden, domain.KindForbidden, "FORBIDDEN", MsgForbidden)
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
