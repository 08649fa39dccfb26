package http_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

func TestLocalizer_EligeIdioma(t *testing.T) {
	l := apphttp.NewLocalizer("ko")

	assert.Equal(t, language.Korean, l.Tag(""), "sin cabecera usa el idioma por defecto")
	assert.Equal(t, language.Korean, l.Tag("fr-FR"), "idioma no soportado cae en el por defecto")
	assert.Equal(t, language.Chinese, l.Tag("zh-CN,zh;q=0.9"))
	assert.Equal(t, language.English, l.Tag("en-US,en;q=0.8"))
	assert.Equal(t, language.Spanish, l.Tag("es-CO"))
}

func TestLocalizer_Mensajes(t *testing.T) {
	l := apphttp.NewLocalizer("es")

	assert.Equal(t, "producto no encontrado", l.Message("", apphttp.MsgNotFound))
	assert.Equal(t, "product not found", l.Message("en", apphttp.MsgNotFound))
	assert.Equal(t, "상품을 찾을 수 없습니다", l.Message("ko-KR", apphttp.MsgNotFound))
	assert.Equal(t, "库存不足（现有 3，请求 10）", l.Message("zh", apphttp.MsgInsufficientStock, 3, 10))
}
