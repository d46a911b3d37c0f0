package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("backoffice")

	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/v1/:entity", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tenders", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere/at/all", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/:entity", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_RecordMutation(t *testing.T) {
	m := NewMetrics("backoffice")
	m.RecordMutation("partners", "create", nil)
	m.RecordMutation("partners", "create", errors.New("boom"))
	m.RecordMutation("partners", "create", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutationsTotal.WithLabelValues("partners", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationsTotal.WithLabelValues("partners", "create", "error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("backoffice")
	m.RecordImportRows(3, 1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `backoffice_import_rows_total{outcome="invalid"} 1`)
	assert.Contains(t, w.Body.String(), `backoffice_import_rows_total{outcome="valid"} 3`)
}
