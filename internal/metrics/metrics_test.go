package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_ObservesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/api/listings/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.CollectAndCount(HTTPRequestDuration)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/listings/17", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, before+2, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(LoginsTotal.WithLabelValues("success"))
	LoginsTotal.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginsTotal.WithLabelValues("success")))
}
