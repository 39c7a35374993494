package res

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorAbortsWithJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reached := false

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Error(c, http.StatusPaymentRequired, "Card error: declined", nil)
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.False(t, reached)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"error": "Card error: declined", "error_code": float64(402)}, body)
}
