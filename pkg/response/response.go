// Package response writes the {success, data, error} JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a successful envelope with the given status.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, Body{Success: true, Data: data})
}

// Error sends a failed envelope with the given status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{Success: false, Error: msg})
}

// OK sends 200 with data.
func OK(c *gin.Context, data any) { JSON(c, http.StatusOK, data) }

// Created sends 201 with data.
func Created(c *gin.Context, data any) { JSON(c, http.StatusCreated, data) }

// Accepted sends 202 for work handed to the worker.
func Accepted(c *gin.Context, data any) { JSON(c, http.StatusAccepted, data) }

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func BadRequest(c *gin.Context, msg string)   { Error(c, http.StatusBadRequest, msg) }
func Unauthorized(c *gin.Context, msg string) { Error(c, http.StatusUnauthorized, msg) }
func Forbidden(c *gin.Context, msg string)    { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)     { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)     { Error(c, http.StatusConflict, msg) }

// TooManyRequests sends 429 from the rate limiter.
func TooManyRequests(c *gin.Context, msg string) { Error(c, http.StatusTooManyRequests, msg) }

func ServiceUnavailable(c *gin.Context, msg string) { Error(c, http.StatusServiceUnavailable, msg) }

// Internal sends 500. msg must not leak error details.
func Internal(c *gin.Context, msg string) { Error(c, http.StatusInternalServerError, msg) }
