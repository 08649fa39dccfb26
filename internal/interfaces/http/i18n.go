package http

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Claves de mensajes localizados.
const (
	MsgValidation           = "validation"
	MsgNotFound             = "not_found"
	MsgInsufficientStock    = "insufficient_stock"
	MsgConcurrencyExhausted = "concurrency_exhausted"
	MsgPersistence          = "persistence"
	MsgUnauthorized         = "unauthorized"
	MsgForbidden            = "forbidden"
	MsgInternal             = "internal"
	MsgInvalidBody          = "invalid_body"
	MsgMissingToken         = "missing_token"
	MsgInvalidToken         = "invalid_token"
	MsgMissingRole          = "missing_role"
	MsgCashbookBridge       = "cashbook_bridge"
	MsgAdjustmentClamped    = "adjustment_clamped"
)

// translations por idioma. insufficient_stock recibe (disponible, solicitado);
// adjustment_clamped recibe (solicitado, aplicado).
var translations = map[language.Tag]map[string]string{
	language.Korean: {
		MsgValidation:           "요청 값이 올바르지 않습니다",
		MsgNotFound:             "상품을 찾을 수 없습니다",
		MsgInsufficientStock:    "재고가 부족합니다 (현재 %d, 요청 %d)",
		MsgConcurrencyExhausted: "다른 작업과 충돌했습니다. 잠시 후 다시 시도하세요",
		MsgPersistence:          "저장 중 오류가 발생했습니다",
		MsgUnauthorized:         "인증이 필요합니다",
		MsgForbidden:            "권한이 없습니다",
		MsgInternal:             "내부 오류가 발생했습니다",
		MsgInvalidBody:          "요청 본문을 해석할 수 없습니다",
		MsgMissingToken:         "인증 토큰이 필요합니다",
		MsgInvalidToken:         "토큰이 유효하지 않거나 만료되었습니다",
		MsgMissingRole:          "토큰에 역할 정보가 없습니다",
		MsgCashbookBridge:       "재고는 반영되었지만 가계부 기록에 실패했습니다",
		MsgAdjustmentClamped:    "요청 수량 %d 중 %d만 반영되었습니다 (재고는 0 미만이 될 수 없음)",
	},
	language.Chinese: {
		MsgValidation:           "请求参数无效",
		MsgNotFound:             "未找到该商品",
		MsgInsufficientStock:    "库存不足（现有 %d，请求 %d）",
		MsgConcurrencyExhausted: "与其他操作冲突，请稍后重试",
		MsgPersistence:          "保存失败",
		MsgUnauthorized:         "需要登录",
		MsgForbidden:            "没有权限",
		MsgInternal:             "内部错误",
		MsgInvalidBody:          "无法解析请求体",
		MsgMissingToken:         "缺少认证令牌",
		MsgInvalidToken:         "令牌无效或已过期",
		MsgMissingRole:          "令牌中缺少角色信息",
		MsgCashbookBridge:       "库存已更新，但记账失败",
		MsgAdjustmentClamped:    "请求数量 %d，实际仅调整 %d（库存不能为负）",
	},
	language.English: {
		MsgValidation:           "invalid request",
		MsgNotFound:             "product not found",
		MsgInsufficientStock:    "insufficient stock (on hand %d, requested %d)",
		MsgConcurrencyExhausted: "conflicting update, please retry",
		MsgPersistence:          "storage failure",
		MsgUnauthorized:         "authentication required",
		MsgForbidden:            "access denied",
		MsgInternal:             "internal error",
		MsgInvalidBody:          "malformed request body",
		MsgMissingToken:         "authorization token required",
		MsgInvalidToken:         "invalid or expired token",
		MsgMissingRole:          "token has no role claim",
		MsgCashbookBridge:       "stock updated but the cashbook entry was not recorded",
		MsgAdjustmentClamped:    "requested %d but only %d was applied (stock cannot go below zero)",
	},
	language.Spanish: {
		MsgValidation:           "datos inválidos",
		MsgNotFound:             "producto no encontrado",
		MsgInsufficientStock:    "stock insuficiente (disponible %d, solicitado %d)",
		MsgConcurrencyExhausted: "conflicto con otra operación, reintente",
		MsgPersistence:          "fallo de almacenamiento",
		MsgUnauthorized:         "autenticación requerida",
		MsgForbidden:            "acceso denegado",
		MsgInternal:             "error interno",
		MsgInvalidBody:          "cuerpo inválido",
		MsgMissingToken:         "Authorization header requerido",
		MsgInvalidToken:         "token inválido o expirado",
		MsgMissingRole:          "el token no incluye rol",
		MsgCashbookBridge:       "stock actualizado pero no se registró el libro de caja",
		MsgAdjustmentClamped:    "se solicitó %d pero solo se aplicó %d (el stock no puede ser negativo)",
	},
}

// Localizer elige el idioma a partir de Accept-Language; si no coincide ninguno usa el por defecto.
type Localizer struct {
	supported []language.Tag
	matcher   language.Matcher
	catalog   catalog.Catalog
}

// NewLocalizer construye el catálogo. defaultLocale: ko, zh, en o es (otro valor cae en ko).
func NewLocalizer(defaultLocale string) *Localizer {
	def := language.Korean
	if tag, err := language.Parse(defaultLocale); err == nil {
		base, _ := tag.Base()
		for t := range translations {
			if tb, _ := t.Base(); tb == base {
				def = t
			}
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(def))
	for tag, msgs := range translations {
		for key, text := range msgs {
			_ = b.SetString(tag, key, text)
		}
	}

	// El primero de la lista es el que devuelve el matcher cuando nada coincide.
	supported := []language.Tag{def}
	for _, t := range []language.Tag{language.Korean, language.Chinese, language.English, language.Spanish} {
		if t != def {
			supported = append(supported, t)
		}
	}
	return &Localizer{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		catalog:   b,
	}
}

// Tag idioma resuelto para un valor de Accept-Language.
func (l *Localizer) Tag(acceptLanguage string) language.Tag {
	_, idx := language.MatchStrings(l.matcher, acceptLanguage)
	return l.supported[idx]
}

// Message texto localizado de key con argumentos opcionales.
func (l *Localizer) Message(acceptLanguage, key string, args ...any) string {
	p := message.NewPrinter(l.Tag(acceptLanguage), message.Catalog(l.catalog))
	return p.Sprintf(key, args...)
}
