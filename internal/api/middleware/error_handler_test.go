package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func errorRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func performGet(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	return w
}

func TestErrorHandler_ValidationErrorCarriesViolationMap(t *testing.T) {
	err := apperrors.Validation("site", map[string]apperrors.RuleCode{
		"siteName": apperrors.RuleRequired,
		"number":   apperrors.RuleNotPositive,
	})
	w := performGet(errorRouter(err))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Code       string            `json:"code"`
		Entity     string            `json:"entity"`
		Violations map[string]string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeValidationFailed, body.Code)
	assert.Equal(t, "site", body.Entity)
	assert.Equal(t, "FIELD_REQUIRED", body.Violations["siteName"])
	assert.Equal(t, "NUMBER_NOT_POSITIVE", body.Violations["number"])
}

func TestErrorHandler_NotFoundMapsToEntityCode(t *testing.T) {
	w := performGet(errorRouter(apperrors.NewNotFound("machine", 42)))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.CodeMachineNotFound)
}

func TestErrorHandler_AppErrorUsesItsStatus(t *testing.T) {
	w := performGet(errorRouter(apperrors.ErrPermissionDenied("site:delete")))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.CodePermissionDenied)
}

func TestErrorHandler_StorageErrorIsInternal(t *testing.T) {
	w := performGet(errorRouter(apperrors.NewStorage("insert", "site", assert.AnError)))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.CodeStorageFailed)
}

func TestErrorHandler_UnknownErrorFallsBackTo500(t *testing.T) {
	w := performGet(errorRouter(assert.AnError))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.CodeInternal)
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
