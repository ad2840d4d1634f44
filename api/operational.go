package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type OperationalControl interface {
	IsOperational() bool
	SetOperational(ctx context.Context, caller string, on bool) error
}

type OperationalHandler struct {
	gate OperationalControl
}

type setOperationalRequest struct {
	Caller      string `json:"caller" binding:"required"`
	Operational *bool  `json:"operational" binding:"required"`
}

func NewOperationalHandler(gate OperationalControl) *OperationalHandler {
	return &OperationalHandler{gate: gate}
}

func (h *OperationalHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.get)
	router.PUT("/", h.set)
}

func (h *OperationalHandler) get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operational": h.gate.IsOperational()})
}

func (h *OperationalHandler) set(c *gin.Context) {
	var req setOperationalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.gate.SetOperational(c.Request.Context(), req.Caller, *req.Operational); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational": h.gate.IsOperational()})
}
