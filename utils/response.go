package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON envelope with the given status code.
func Respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Message: message,
		Data:    data,
	})
}

// Success returns a 200 response.
func Success(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, http.StatusOK, message, data)
}

// Created returns a 201 response.
func Created(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, http.StatusCreated, message, data)
}

// Error returns an error envelope without a payload.
func Error(ctx *gin.Context, status int, message string) {
	Respond(ctx, status, message, nil)
}

// ValidationError returns a 422 with per-field messages under data.errors.
func ValidationError(ctx *gin.Context, errors map[string]string) {
	Respond(ctx, http.StatusUnprocessableEntity, "The given data was invalid.", gin.H{"errors": errors})
}
