package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { abortWithError(c, http.StatusInternalServerError, "boom") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, "/ok", entries[0].ContextMap()["path"])
	require.Equal(t, "x=1", entries[0].ContextMap()["query"])
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}

func TestGetUserIDFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := getUserIDFromContext(c)
	require.Error(t, err)

	c.Set(ContextUserIDKey, 42)
	_, err = getUserIDFromContext(c)
	require.Error(t, err)

	c.Set(ContextUserIDKey, "abc")
	id, err := getUserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "abc", id)
}
