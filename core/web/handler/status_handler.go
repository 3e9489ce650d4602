package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thescopedao/solana_arb_bot/core/model"
)

var statusSource func() model.CycleStatus

// SetStatusSource wires the engine's snapshot getter into the web layer.
func SetStatusSource(fn func() model.CycleStatus) {
	statusSource = fn
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok"})
}

// ArbStatusHandler returns the last cycle's outcome.
func ArbStatusHandler(c *gin.Context) {
	if statusSource == nil {
		c.JSON(http.StatusOK, Response{Code: 1, Message: "engine not running"})
		return
	}

	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: statusSource()})
}
