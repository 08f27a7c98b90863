package exceptions

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecovers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	module := &ExceptionsModule{}
	router := gin.New()
	router.Use(module.Middleware(false))
	router.GET("/boom", func(c *gin.Context) {
		panic(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestRecoverSwallows(t *testing.T) {
	module := &ExceptionsModule{}
	assert.NotPanics(t, func() {
		defer module.Recover()
		panic("boom")
	})
}
