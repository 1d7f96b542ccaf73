// Package response writes JSON bodies for the HTTP handlers.
//
// Success responses carry the resource document itself; errors use the Body envelope.
// Everything goes through gin's PureJSON so non-ASCII text (category names, addresses)
// is written literally instead of being escaped.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the error envelope.
type Body struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.PureJSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.PureJSON(http.StatusCreated, data)
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	fail(c, http.StatusBadRequest, err)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	fail(c, http.StatusUnauthorized, err)
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	fail(c, http.StatusNotFound, err)
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	fail(c, http.StatusConflict, err)
}

// TooLarge sends 413.
func TooLarge(c *gin.Context, err string) {
	fail(c, http.StatusRequestEntityTooLarge, err)
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	fail(c, http.StatusServiceUnavailable, err)
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	fail(c, http.StatusInternalServerError, err)
}

func fail(c *gin.Context, status int, err string) {
	c.PureJSON(status, Body{Success: false, Error: err})
}
