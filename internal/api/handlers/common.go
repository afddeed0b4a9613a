package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/service"
)

// Response is the {code, msg} envelope every endpoint answers with.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// PageData wraps one page of list results.
type PageData struct {
	Result   interface{} `json:"result"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

const codeSuccess = 0

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Code: codeSuccess, Msg: "success"})
}

func okData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: codeSuccess, Msg: "success", Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Code: status, Msg: msg})
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy.
// Unexpected errors are logged with their cause and surfaced generically.
func writeServiceError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	var validation *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "not exists")
	case errors.As(err, &conflict):
		fail(c, http.StatusBadRequest, conflict.Message)
	case errors.As(err, &validation):
		fail(c, http.StatusBadRequest, validation.Message)
	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
