package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func TestEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) { Created(c, map[string]int{"n": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, w.Body.String())

	w = record(func(c *gin.Context) { Conflict(c, "slot is full") })
	assert.Equal(t, http.StatusConflict, w.Code)
	var body Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "slot is full", body.Error)
	assert.Nil(t, body.Data)
}

func TestStatusHelpers(t *testing.T) {
	cases := map[int]func(*gin.Context, string){
		http.StatusBadRequest:          BadRequest,
		http.StatusUnauthorized:        Unauthorized,
		http.StatusForbidden:           Forbidden,
		http.StatusNotFound:            NotFound,
		http.StatusTooManyRequests:     TooManyRequests,
		http.StatusServiceUnavailable:  ServiceUnavailable,
		http.StatusInternalServerError: Internal,
	}
	for status, fn := range cases {
		w := record(func(c *gin.Context) { fn(c, "x") })
		assert.Equal(t, status, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"x"}`, w.Body.String())
	}
}
