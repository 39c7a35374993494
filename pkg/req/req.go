package req

import (
	"errors"
	"net/http"

	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/Dhoini/stripe-charge/pkg/res"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// HandleBody декодирует и валидирует JSON тело запроса.
// При ошибке ответ уже отправлен и возвращается false.
func HandleBody[T any](c *gin.Context, log *logger.Logger) (*T, bool) {
	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warnw("Request body validation failed", "path", c.Request.URL.Path, "error", err)
			res.Error(c, http.StatusUnprocessableEntity, "Invalid request data", FieldErrors(verrs))
			return nil, false
		}

		log.Warnw("Failed to decode request body", "path", c.Request.URL.Path, "error", err)
		res.Error(c, http.StatusBadRequest, "Invalid request format", nil)
		return nil, false
	}
	return &payload, true
}

// FieldErrors превращает ошибки валидатора в map поле -> правило
func FieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
