package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordResponse(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ResponseData) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccessEnvelope(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		Success(c, "done", gin.H{"id": "abc"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, "done", body.Message)
	assert.Empty(t, body.Error)
}

func TestErrorEnvelopes(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		Conflict(c, "slot already taken")
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, body.Status)
	assert.Equal(t, "slot already taken", body.Error)

	w, body = recordResponse(t, func(c *gin.Context) {
		NotFound(c, "missing")
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing", body.Error)
}

func TestBindAndValidateRejectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	var p payload
	assert.False(t, BindAndValidate(c, &p))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
